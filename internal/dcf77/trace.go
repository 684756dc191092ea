package dcf77

// Tracer наблюдает за приёмом. Методы вызываются в контексте обработки фронта
// и не должны блокироваться.
type Tracer interface {
	Bit(pos int, v bool)
	Noise(intervalMs uint16)
	Spurious(level Level)
	Minute(bits int)
	Accepted(f Frame)
	Rejected(err error)
}

// NopTracer ничего не делает; удобно встраивать, переопределяя нужные методы.
type NopTracer struct{}

func (NopTracer) Bit(int, bool)  {}
func (NopTracer) Noise(uint16)   {}
func (NopTracer) Spurious(Level) {}
func (NopTracer) Minute(int)     {}
func (NopTracer) Accepted(Frame) {}
func (NopTracer) Rejected(error) {}

// Tracers рассылает события всем наблюдателям по порядку.
type Tracers []Tracer

func (ts Tracers) Bit(pos int, v bool) {
	for _, t := range ts {
		t.Bit(pos, v)
	}
}

func (ts Tracers) Noise(intervalMs uint16) {
	for _, t := range ts {
		t.Noise(intervalMs)
	}
}

func (ts Tracers) Spurious(level Level) {
	for _, t := range ts {
		t.Spurious(level)
	}
}

func (ts Tracers) Minute(bits int) {
	for _, t := range ts {
		t.Minute(bits)
	}
}

func (ts Tracers) Accepted(f Frame) {
	for _, t := range ts {
		t.Accepted(f)
	}
}

func (ts Tracers) Rejected(err error) {
	for _, t := range ts {
		t.Rejected(err)
	}
}
