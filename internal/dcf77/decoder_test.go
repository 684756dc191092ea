package dcf77

import (
	"testing"

	"github.com/shiwa/timecard-mini/dcfclock/internal/timebase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock — ручной счётчик миллисекунд, запоминающий вызовы SetSynced.
type fakeClock struct {
	ms     uint16
	synced []timebase.Wallclock
}

func (c *fakeClock) ElapsedMs() uint16              { return c.ms }
func (c *fakeClock) SetSynced(w timebase.Wallclock) { c.synced = append(c.synced, w) }
func (c *fakeClock) advance(ms int)                 { c.ms += uint16(ms) }

// recordTracer записывает события декодера.
type recordTracer struct {
	NopTracer
	symbols  []byte
	rejected []error
	spurious int
}

func (r *recordTracer) Bit(_ int, v bool) {
	if v {
		r.symbols = append(r.symbols, '1')
	} else {
		r.symbols = append(r.symbols, '0')
	}
}
func (r *recordTracer) Noise(uint16)       { r.symbols = append(r.symbols, 'X') }
func (r *recordTracer) Spurious(Level)     { r.spurious++ }
func (r *recordTracer) Rejected(err error) { r.rejected = append(r.rejected, err) }

// sendMinute передаёт метку минуты и кадр b, затем следующую метку.
func sendMinute(d *Decoder, c *fakeClock, b Bits) {
	c.advance(2000)
	d.HandleEdge(High)
	for i := 0; i < FrameBits; i++ {
		w := 100
		if b.Get(i) {
			w = 200
		}
		if i > 0 {
			d.HandleEdge(High)
		}
		c.advance(w)
		d.HandleEdge(Low)
		c.advance(1000 - w)
	}
	// секунда 59 без импульса
	c.advance(1000)
	d.HandleEdge(High)
}

func TestDecoder_AcceptsCanonicalFrame(t *testing.T) {
	c := &fakeClock{}
	d := NewDecoder(c)
	sendMinute(d, c, canonicalBits())

	require.Len(t, c.synced, 1)
	assert.Equal(t, timebase.Wallclock{Year: 2024, Month: 6, Day: 15, Hour: 14, Minute: 30}, c.synced[0])
	assert.Equal(t, Stats{Accepted: 1}, d.Stats())
	assert.Zero(t, d.count, "буфер сбрасывается на метке минуты")
}

func TestDecoder_RejectsParityFlip(t *testing.T) {
	for _, pos := range []int{28, 35, 58} {
		c := &fakeClock{}
		tr := &recordTracer{}
		d := NewDecoder(c, WithTracer(tr))
		b := canonicalBits()
		b.Set(pos, !b.Get(pos))
		sendMinute(d, c, b)

		assert.Empty(t, c.synced, "бит чётности %d", pos)
		assert.Equal(t, uint32(1), d.Stats().Rejected)
		require.Len(t, tr.rejected, 1)
		assert.Zero(t, d.count)
	}
}

func TestDecoder_SyncWithEngine(t *testing.T) {
	e := timebase.New()
	d := NewDecoder(e)

	// сигнал, привязанный к тикам шкалы
	edge := func(level Level, after int) {
		for i := 0; i < after; i++ {
			e.Tick()
		}
		d.HandleEdge(level)
	}
	b := canonicalBits()
	edge(High, 2000)
	for i := 0; i < FrameBits; i++ {
		w := 100
		if b.Get(i) {
			w = 200
		}
		if i > 0 {
			edge(High, 1000-wPrev(b, i))
		}
		edge(Low, w)
	}
	edge(High, 1000-wPrev(b, FrameBits)+1000)

	assert.True(t, e.IsSynced())
	assert.Equal(t, timebase.Wallclock{Year: 2024, Month: 6, Day: 15, Hour: 14, Minute: 30}, e.Snapshot())
}

func wPrev(b Bits, i int) int {
	if b.Get(i - 1) {
		return 200
	}
	return 100
}

func TestDecoder_EdgeClassification(t *testing.T) {
	tests := []struct {
		interval int
		want     byte
	}{
		{60, 'X'},
		{61, '0'},
		{100, '0'},
		{139, '0'},
		{140, 'X'},
		{150, 'X'},
		{160, 'X'},
		{161, '1'},
		{200, '1'},
		{239, '1'},
		{240, 'X'},
		{500, 'X'},
	}
	for _, tt := range tests {
		c := &fakeClock{}
		tr := &recordTracer{}
		d := NewDecoder(c, WithTracer(tr))
		c.advance(1000)
		d.HandleEdge(High)
		c.advance(tt.interval)
		d.HandleEdge(Low)
		assert.Equal(t, []byte{tt.want}, tr.symbols, "интервал %d мс", tt.interval)
		if tt.want == 'X' {
			assert.Zero(t, d.count, "шум не добавляет бит (%d мс)", tt.interval)
		} else {
			assert.Equal(t, 1, d.count)
			assert.Equal(t, tt.want == '1', d.bits.Get(0))
		}
	}
}

func TestDecoder_Debounce(t *testing.T) {
	c := &fakeClock{}
	tr := &recordTracer{}
	d := NewDecoder(c, WithTracer(tr))

	// начальный уровень — low
	c.advance(100)
	d.HandleEdge(Low)
	assert.Equal(t, 1, tr.spurious)

	d.HandleEdge(High)
	c.advance(100)
	d.HandleEdge(High)
	assert.Equal(t, 2, tr.spurious)
	// повтор не сдвигает отметку последнего фронта
	d.HandleEdge(Low)
	assert.Equal(t, []byte{'0'}, tr.symbols)
}

func TestDecoder_CounterWrap(t *testing.T) {
	c := &fakeClock{ms: 65500}
	d := NewDecoder(c)
	d.HandleEdge(High)
	c.advance(200) // 65500 + 200 → 164
	require.Equal(t, uint16(164), c.ms)
	d.HandleEdge(Low)
	assert.Equal(t, 1, d.count)
	assert.True(t, d.bits.Get(0))
}

func TestDecoder_Desynchronized(t *testing.T) {
	c := &fakeClock{}
	d := NewDecoder(c)
	for i := 0; i < 70; i++ {
		c.advance(900)
		d.HandleEdge(High)
		c.advance(100)
		d.HandleEdge(Low)
	}
	assert.Equal(t, maxBits+1, d.count, "после 61 бита без метки приём игнорируется")

	// метка минуты без ровно 59 бит — без синхронизации, но со сбросом
	c.advance(2000)
	d.HandleEdge(High)
	assert.Empty(t, c.synced)
	assert.Zero(t, d.count)
}

func TestDecoder_ShortFrameNotValidated(t *testing.T) {
	c := &fakeClock{}
	d := NewDecoder(c)
	b := canonicalBits()
	// пропуск одного импульса: 58 бит
	c.advance(2000)
	d.HandleEdge(High)
	for i := 0; i < FrameBits-1; i++ {
		if i > 0 {
			d.HandleEdge(High)
		}
		w := 100
		if b.Get(i) {
			w = 200
		}
		c.advance(w)
		d.HandleEdge(Low)
		c.advance(1000 - w)
	}
	c.advance(2000)
	d.HandleEdge(High)
	assert.Empty(t, c.synced)
	assert.Equal(t, Stats{}, d.Stats())
}

func TestDecoder_DisableEnable(t *testing.T) {
	c := &fakeClock{}
	d := NewDecoder(c)
	require.True(t, d.Enabled())

	d.Disable()
	assert.False(t, d.Enabled())
	sendMinute(d, c, canonicalBits())
	assert.Empty(t, c.synced, "выключенный декодер не принимает кадры")

	// половина кадра, затем выключение и включение
	d.Enable()
	c.advance(2000)
	d.HandleEdge(High)
	for i := 0; i < 30; i++ {
		c.advance(100)
		d.HandleEdge(Low)
		c.advance(900)
		d.HandleEdge(High)
	}
	d.Disable()
	c.advance(5000)
	d.Enable()
	d.HandleEdge(Low)

	// следующий полный кадр принимается: метка минуты сбрасывает остаток
	sendMinute(d, c, canonicalBits())
	require.Len(t, c.synced, 1)
}

func TestTracers_FanOut(t *testing.T) {
	a, b := &recordTracer{}, &recordTracer{}
	ts := Tracers{a, b}
	ts.Bit(0, true)
	ts.Noise(10)
	ts.Rejected(ErrStartBit)
	assert.Equal(t, []byte("1X"), a.symbols)
	assert.Equal(t, a.symbols, b.symbols)
	assert.Len(t, b.rejected, 1)
}
