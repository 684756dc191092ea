package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shiwa/timecard-mini/dcfclock/internal/dcf77"
)

// Длительности импульсов передатчика.
const (
	pulseZero = 100 * time.Millisecond
	pulseOne  = 200 * time.Millisecond
)

// Simulated — модель передатчика DCF77: в секунды 0–58 импульс 100/200 мс
// по биту кадра следующей минуты, в секунду 59 импульса нет.
type Simulated struct {
	clock clockwork.Clock
	start time.Time
}

// NewSimulated создаёт передатчик, начинающий с секунды start (время в зоне передатчика).
func NewSimulated(clock clockwork.Clock, start time.Time) *Simulated {
	return &Simulated{clock: clock, start: start.Truncate(time.Second)}
}

// Name возвращает имя источника
func (s *Simulated) Name() string {
	return fmt.Sprintf("simulated:%s", s.start.Format(time.RFC3339))
}

// Run передаёт сигнал до отмены ctx.
func (s *Simulated) Run(ctx context.Context, emit func(dcf77.Level)) error {
	loc := s.start.Location()
	t := s.start
	var bits dcf77.Bits
	frameMinute := time.Time{}
	for {
		minute := t.Truncate(time.Minute)
		if !minute.Equal(frameMinute) {
			frameMinute = minute
			next := minute.Add(time.Minute).In(loc)
			bits = dcf77.Encode(dcf77.FrameFor(next))
		}
		sec := t.Second()
		if sec == 59 {
			if err := s.sleep(ctx, time.Second); err != nil {
				return err
			}
		} else {
			width := pulseZero
			if bits.Get(sec) {
				width = pulseOne
			}
			emit(dcf77.High)
			if err := s.sleep(ctx, width); err != nil {
				return err
			}
			emit(dcf77.Low)
			if err := s.sleep(ctx, time.Second-width); err != nil {
				return err
			}
		}
		t = t.Add(time.Second)
	}
}

func (s *Simulated) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(d):
		return nil
	}
}

// Close ничего не освобождает
func (s *Simulated) Close() error {
	return nil
}
