package debugport

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shiwa/timecard-mini/dcfclock/internal/timebase"
)

// Clock — чтение шкалы времени для строки состояния.
type Clock interface {
	Snapshot() timebase.Wallclock
	IsSynced() bool
}

// StatusLine форматирует строку состояния: дата, время до миллисекунд и '*' при синхронизации.
func StatusLine(w timebase.Wallclock, synced bool) string {
	mark := ' '
	if synced {
		mark = '*'
	}
	return fmt.Sprintf("%02d.%02d.%04d %02d:%02d:%02d.%03d %c",
		w.Day, w.Month, w.Year, w.Hour, w.Minute, w.Second, w.Millisecond, mark)
}

// RunStatus раз в every выводит строку состояния поверх предыдущей до отмены ctx.
func (p *Port) RunStatus(ctx context.Context, clock clockwork.Clock, every time.Duration, c Clock) error {
	tk := clock.NewTicker(every)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.Chan():
			p.put("\r" + StatusLine(c.Snapshot(), c.IsSynced()))
		}
	}
}
