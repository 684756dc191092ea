package timebase

import (
	"sync"
	"testing"

	"github.com/shiwa/timecard-mini/dcfclock/internal/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const msPerMinute = 60 * 1000

func tickN(e *Engine, n int) {
	for i := 0; i < n; i++ {
		e.Tick()
	}
}

func TestNew_Epoch(t *testing.T) {
	e := New()
	assert.Equal(t, Epoch, e.Snapshot())
	assert.False(t, e.IsSynced())
	assert.Equal(t, StatusUnavailable, e.Status())
	assert.Zero(t, e.ElapsedMs())
}

func TestTick_Rollover(t *testing.T) {
	tests := []struct {
		name  string
		start Wallclock
		want  Wallclock
	}{
		{
			name:  "следующий день",
			start: Wallclock{2024, 6, 15, 23, 59, 59, 999},
			want:  Wallclock{2024, 6, 16, 0, 0, 0, 0},
		},
		{
			name:  "конец месяца 30 дней",
			start: Wallclock{2024, 4, 30, 23, 59, 59, 999},
			want:  Wallclock{2024, 5, 1, 0, 0, 0, 0},
		},
		{
			name:  "конец года",
			start: Wallclock{2023, 12, 31, 23, 59, 59, 999},
			want:  Wallclock{2024, 1, 1, 0, 0, 0, 0},
		},
		{
			name:  "29 февраля високосного года",
			start: Wallclock{2024, 2, 28, 23, 59, 59, 999},
			want:  Wallclock{2024, 2, 29, 0, 0, 0, 0},
		},
		{
			name:  "28 февраля невисокосного года",
			start: Wallclock{2023, 2, 28, 23, 59, 59, 999},
			want:  Wallclock{2023, 3, 1, 0, 0, 0, 0},
		},
		{
			name:  "2100 не високосный",
			start: Wallclock{2100, 2, 28, 23, 59, 59, 999},
			want:  Wallclock{2100, 3, 1, 0, 0, 0, 0},
		},
		{
			name:  "секунда",
			start: Wallclock{2024, 6, 15, 12, 0, 0, 999},
			want:  Wallclock{2024, 6, 15, 12, 0, 1, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(WithStart(tt.start))
			e.Tick()
			assert.Equal(t, tt.want, e.Snapshot())
		})
	}
}

func TestElapsedMs_Wraps(t *testing.T) {
	e := New()
	tickN(e, 65535)
	assert.Equal(t, uint16(65535), e.ElapsedMs())
	e.Tick()
	assert.Equal(t, uint16(0), e.ElapsedMs())
}

func TestSnapshot_Idempotent(t *testing.T) {
	e := New()
	tickN(e, 1234)
	assert.Equal(t, e.Snapshot(), e.Snapshot())
}

func TestSetSynced(t *testing.T) {
	e := New()
	w := Wallclock{2024, 6, 15, 14, 30, 0, 0}
	e.SetSynced(w)
	assert.Equal(t, w, e.Snapshot())
	assert.True(t, e.IsSynced())
	assert.Equal(t, StatusLocked, e.Status())
}

func TestStaleness(t *testing.T) {
	for _, m := range []uint8{0, 14, 54, 57, 59} {
		e := New()
		e.SetSynced(Wallclock{2024, 6, 15, 14, m, 0, 0})

		// пять полных минут — ещё синхронизированы
		tickN(e, 5*msPerMinute)
		require.True(t, e.IsSynced(), "минута %d: после 5 минут", m)

		tickN(e, msPerMinute-1)
		require.True(t, e.IsSynced(), "минута %d: за 1 мс до шестой минуты", m)

		e.Tick()
		assert.Equal(t, (m+6)%60, e.Snapshot().Minute)
		assert.False(t, e.IsSynced(), "минута %d: шестая минута", m)
		assert.Equal(t, StatusUnlocked, e.Status())
	}
}

func TestStaleness_Custom(t *testing.T) {
	e := New(WithStaleMinutes(2))
	e.SetSynced(Wallclock{2024, 6, 15, 14, 10, 0, 0})
	tickN(e, 3*msPerMinute-1)
	assert.True(t, e.IsSynced())
	e.Tick()
	assert.False(t, e.IsSynced())
}

func TestStaleness_ResyncKeepsLock(t *testing.T) {
	e := New()
	w := Wallclock{2024, 6, 15, 14, 10, 0, 0}
	e.SetSynced(w)
	for i := 0; i < 10; i++ {
		tickN(e, msPerMinute)
		w.Minute++
		e.SetSynced(w)
	}
	assert.True(t, e.IsSynced())
}

func TestOnRefresh_Instants(t *testing.T) {
	e := New()
	var got []uint16
	e.OnRefresh(func(now Wallclock) {
		got = append(got, now.Millisecond)
		// снимок внутри обработчика не должен блокироваться
		_ = e.Snapshot()
	})
	tickN(e, 2000)
	assert.Equal(t, []uint16{500, 0, 500, 0}, got)

	e.OnRefresh(nil)
	tickN(e, 1000)
	assert.Len(t, got, 4)
}

// TestPropertyTickKeepsValidDate — после любой последовательности тиков дата допустима.
func TestPropertyTickKeepsValidDate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		year := rapid.Uint16Range(1970, 2399).Draw(t, "year")
		month := rapid.Uint8Range(1, 12).Draw(t, "month")
		last := calendar.DaysInMonth(month, year)
		start := Wallclock{
			Year:        year,
			Month:       month,
			Day:         rapid.Uint8Range(last-3, last).Draw(t, "day"),
			Hour:        23,
			Minute:      59,
			Second:      rapid.Uint8Range(55, 59).Draw(t, "second"),
			Millisecond: rapid.Uint16Range(0, 999).Draw(t, "ms"),
		}
		e := New(WithStart(start))
		n := rapid.IntRange(1, 10000).Draw(t, "ticks")
		for i := 0; i < n; i++ {
			e.Tick()
			if w := e.Snapshot(); !w.Valid() {
				t.Fatalf("invalid wallclock %v after %d ticks from %v", w, i+1, start)
			}
		}
	})
}

func TestConcurrentAccess(t *testing.T) {
	e := New()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200000; i++ {
			e.Tick()
		}
		close(stop)
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		w := Wallclock{2024, 2, 29, 23, 59, 59, 0}
		for {
			select {
			case <-stop:
				return
			default:
				e.SetSynced(w)
			}
		}
	}()

	for {
		select {
		case <-stop:
			wg.Wait()
			return
		default:
			w := e.Snapshot()
			require.True(t, w.Valid(), "частично обновлённое время: %v", w)
		}
	}
}

func TestWallclock_TimeRoundTrip(t *testing.T) {
	w := Wallclock{2024, 6, 15, 14, 30, 12, 345}
	assert.Equal(t, w, FromTime(w.Time(nil)))
	assert.Equal(t, "2024-06-15 14:30:12.345", w.String())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "locked", StatusLocked.String())
	assert.Equal(t, "unlocked", StatusUnlocked.String())
	assert.Equal(t, "unavailable", StatusUnavailable.String())
	assert.Equal(t, "unknown", Status(42).String())
	assert.True(t, StatusLocked.IsUsable())
	assert.False(t, StatusUnlocked.IsUsable())
}
