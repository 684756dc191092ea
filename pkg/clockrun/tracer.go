package clockrun

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shiwa/timecard-mini/dcfclock/internal/clockadj"
	"github.com/shiwa/timecard-mini/dcfclock/internal/dcf77"
	"github.com/shiwa/timecard-mini/dcfclock/internal/logger"
)

// logTracer пишет итог каждой минуты в журнал.
type logTracer struct {
	dcf77.NopTracer
}

func (logTracer) Accepted(f dcf77.Frame) {
	logger.Info("dcf77: frame %s", f)
}

func (logTracer) Rejected(err error) {
	logger.Debug("dcf77: frame rejected: %v", err)
}

// accepted — время кадра и момент его приёма по локальным часам.
type accepted struct {
	ref time.Time
	at  time.Time
}

// hostClock переносит принятое время в системные часы вне контекста обработки фронта.
type hostClock struct {
	dcf77.NopTracer
	adj    clockadj.Adjuster
	clock  clockwork.Clock
	limit  time.Duration
	frames chan accepted
}

func newHostClock(adj clockadj.Adjuster, clock clockwork.Clock, limit time.Duration) *hostClock {
	return &hostClock{
		adj:    adj,
		clock:  clock,
		limit:  limit,
		frames: make(chan accepted, 1),
	}
}

func (h *hostClock) Accepted(f dcf77.Frame) {
	select {
	case h.frames <- accepted{ref: f.Time().UTC(), at: h.clock.Now()}:
	default:
	}
}

func (h *hostClock) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case a := <-h.frames:
			// поправка на время, прошедшее с приёма кадра
			now := h.clock.Now()
			ref := a.ref.Add(now.Sub(a.at))
			offset, err := clockadj.Apply(h.adj, ref, now, h.limit)
			if err != nil {
				logger.Error("adjust clock: %v", err)
				continue
			}
			if offset != 0 {
				logger.Info("adjust clock: offset %v", offset)
			}
		}
	}
}
