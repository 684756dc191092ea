// Package clockadj — коррекция системных часов по принятому времени DCF77.
package clockadj

import "time"

// Adjuster — приёмник поправок системного времени.
type Adjuster interface {
	Step(t time.Time) error
	Slew(offset time.Duration) error
}

// System — системные часы (нужен CAP_SYS_TIME или root).
type System struct{}

func (System) Step(t time.Time) error          { return Step(t) }
func (System) Slew(offset time.Duration) error { return Slew(offset.Nanoseconds()) }

// Apply приводит часы к ref, если now отличается от него: скачком при
// расхождении больше limit, иначе плавной коррекцией. Возвращает расхождение.
func Apply(a Adjuster, ref, now time.Time, limit time.Duration) (time.Duration, error) {
	offset := ref.Sub(now)
	switch {
	case offset == 0:
		return 0, nil
	case offset > limit || offset < -limit:
		return offset, a.Step(ref)
	default:
		return offset, a.Slew(offset)
	}
}
