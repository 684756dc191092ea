// Package ticker — источник тиков 1 мс для шкалы времени.
package ticker

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Period — период тика.
const Period = time.Millisecond

// Tickable — получатель тиков (timebase.Engine).
type Tickable interface {
	Tick()
}

// Run вызывает t.Tick раз в Period по часам clock до отмены ctx.
// Число тиков считается от момента старта, поэтому задержки планировщика
// догоняются пачкой и шкала не отстаёт.
func Run(ctx context.Context, clock clockwork.Clock, t Tickable) error {
	tk := clock.NewTicker(Period)
	defer tk.Stop()

	start := clock.Now()
	var done int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.Chan():
		}
		due := int64(clock.Since(start) / Period)
		for ; done < due; done++ {
			t.Tick()
		}
	}
}
