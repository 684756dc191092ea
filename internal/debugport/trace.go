package debugport

import (
	"github.com/shiwa/timecard-mini/dcfclock/internal/dcf77"
)

// Tracer печатает приём DCF77: '0' и '1' на каждый бит, 'X' на помеху,
// перевод строки на минутной метке и итог проверки кадра.
type Tracer struct {
	dcf77.NopTracer
	port *Port
}

// NewTracer создаёт трассу поверх port.
func NewTracer(port *Port) *Tracer {
	return &Tracer{port: port}
}

func (t *Tracer) Bit(_ int, v bool) {
	if v {
		t.port.put("1")
	} else {
		t.port.put("0")
	}
}

func (t *Tracer) Noise(uint16) {
	t.port.put("X")
}

func (t *Tracer) Accepted(f dcf77.Frame) {
	t.port.Printf("*** DCF valid: %02d.%02d.%02d %02d:%02d", f.Day, f.Month, f.Year%100, f.Hour, f.Minute)
}

func (t *Tracer) Rejected(err error) {
	t.port.Printf("*** DCF invalid: %v", err)
}

func (t *Tracer) Minute(int) {
	t.port.put("\n")
}
