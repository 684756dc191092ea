package dcf77

import (
	"sync/atomic"

	"github.com/shiwa/timecard-mini/dcfclock/internal/timebase"
)

// Clock — то, что декодеру нужно от шкалы времени: счётчик миллисекунд для измерения
// интервалов и запись проверенного времени.
type Clock interface {
	ElapsedMs() uint16
	SetSynced(w timebase.Wallclock)
}

// Stats — счётчики декодера.
type Stats struct {
	Accepted uint32 // кадры, переданные в часы
	Rejected uint32 // полные кадры, не прошедшие проверку
	Noise    uint32 // интервалы вне окон бит
}

// Decoder — конечный автомат приёма DCF77. HandleEdge вызывается из одного контекста
// (источник фронтов); Enable/Disable/Stats безопасны из любого.
type Decoder struct {
	clock   Clock
	tracer  Tracer
	enabled atomic.Bool

	bits      Bits
	count     int
	lastLevel Level
	lastEdge  uint16 // значение счётчика мс на последнем фронте

	accepted atomic.Uint32
	rejected atomic.Uint32
	noise    atomic.Uint32
}

// Option настраивает Decoder.
type Option func(*Decoder)

// WithTracer подключает наблюдателя за приёмом.
func WithTracer(t Tracer) Option {
	return func(d *Decoder) {
		if t != nil {
			d.tracer = t
		}
	}
}

// NewDecoder создаёт включённый декодер, пишущий время в clock.
func NewDecoder(clock Clock, opts ...Option) *Decoder {
	d := &Decoder{
		clock:  clock,
		tracer: NopTracer{},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.enabled.Store(true)
	return d
}

// Enable разрешает обработку фронтов.
func (d *Decoder) Enable() { d.enabled.Store(true) }

// Disable запрещает обработку фронтов; накопленное состояние не сбрасывается,
// следующая метка минуты всё равно очистит кадр.
func (d *Decoder) Disable() { d.enabled.Store(false) }

// Enabled сообщает, обрабатываются ли фронты.
func (d *Decoder) Enabled() bool { return d.enabled.Load() }

// Stats возвращает счётчики.
func (d *Decoder) Stats() Stats {
	return Stats{
		Accepted: d.accepted.Load(),
		Rejected: d.rejected.Load(),
		Noise:    d.noise.Load(),
	}
}

// HandleEdge обрабатывает смену уровня сигнала на level.
func (d *Decoder) HandleEdge(level Level) {
	if !d.enabled.Load() {
		return
	}
	if level == d.lastLevel {
		// повторное срабатывание без смены уровня
		d.tracer.Spurious(level)
		return
	}
	d.lastLevel = level

	now := d.clock.ElapsedMs()
	interval := now - d.lastEdge // по модулю 65536
	d.lastEdge = now

	if level == High {
		if interval > minuteGapMs {
			d.minuteMark()
		}
		return
	}

	if d.count > maxBits {
		return
	}
	switch {
	case interval > oneMinMs && interval < oneMaxMs:
		d.push(true)
	case interval > zeroMinMs && interval < zeroMaxMs:
		d.push(false)
	default:
		d.noise.Add(1)
		d.tracer.Noise(interval)
	}
}

func (d *Decoder) push(v bool) {
	d.bits.Set(d.count, v)
	d.tracer.Bit(d.count, v)
	d.count++
}

// minuteMark завершает кадр: при ровно 59 битах проверяет и передаёт время, затем сбрасывает буфер.
func (d *Decoder) minuteMark() {
	if d.count == FrameBits {
		f, err := Decode(d.bits)
		if err != nil {
			d.rejected.Add(1)
			d.tracer.Rejected(err)
		} else {
			d.clock.SetSynced(f.Wallclock())
			d.accepted.Add(1)
			d.tracer.Accepted(f)
		}
	}
	d.tracer.Minute(d.count)
	d.bits = 0
	d.count = 0
}
