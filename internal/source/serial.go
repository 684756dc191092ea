package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shiwa/timecard-mini/dcfclock/internal/dcf77"
	"go.bug.st/serial"
)

// ModemPort — часть последовательного порта, нужная приёмнику (для подмены в тестах).
type ModemPort interface {
	GetModemStatusBits() (*serial.ModemStatusBits, error)
	Close() error
}

// PortFactory открывает последовательный порт.
type PortFactory func(device string, mode *serial.Mode) (ModemPort, error)

// DefaultPortFactory открывает настоящий порт через go.bug.st/serial.
func DefaultPortFactory(device string, mode *serial.Mode) (ModemPort, error) {
	p, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", device, err)
	}
	return p, nil
}

// SerialConfig — приёмник на линии состояния модема последовательного порта.
type SerialConfig struct {
	Device  string
	Baud    int
	Line    string // dcd, cts, dsr, ri
	Invert  bool
	Poll    time.Duration
	Factory PortFactory // nil = DefaultPortFactory
}

// Serial — источник фронтов: модуль приёмника DCF77, выход которого подключён
// к линии DCD/CTS/DSR порта. Уровень линии опрашивается с периодом Poll.
type Serial struct {
	port   ModemPort
	device string
	line   string
	invert bool
	poll   time.Duration
	clock  clockwork.Clock
	once   sync.Once
}

// NewSerial открывает порт и возвращает источник.
func NewSerial(c SerialConfig, clock clockwork.Clock) (*Serial, error) {
	switch c.Line {
	case "":
		c.Line = "dcd"
	case "dcd", "cts", "dsr", "ri":
	default:
		return nil, fmt.Errorf("serial: unknown line %q", c.Line)
	}
	if c.Baud == 0 {
		c.Baud = 9600
	}
	if c.Poll <= 0 {
		c.Poll = 2 * time.Millisecond
	}
	factory := c.Factory
	if factory == nil {
		factory = DefaultPortFactory
	}
	port, err := factory(c.Device, &serial.Mode{BaudRate: c.Baud})
	if err != nil {
		return nil, err
	}
	return &Serial{
		port:   port,
		device: c.Device,
		line:   c.Line,
		invert: c.Invert,
		poll:   c.Poll,
		clock:  clock,
	}, nil
}

// Name возвращает имя источника
func (s *Serial) Name() string {
	return fmt.Sprintf("serial:%s/%s", s.device, s.line)
}

// Run опрашивает линию и сообщает об изменениях уровня.
func (s *Serial) Run(ctx context.Context, emit func(dcf77.Level)) error {
	tk := s.clock.NewTicker(s.poll)
	defer tk.Stop()

	var last dcf77.Level
	first := true
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.Chan():
		}
		bits, err := s.port.GetModemStatusBits()
		if err != nil {
			return fmt.Errorf("serial %s: modem status: %w", s.device, err)
		}
		level := levelOf(s.active(bits), s.invert)
		if first || level != last {
			first = false
			last = level
			emit(level)
		}
	}
}

func (s *Serial) active(b *serial.ModemStatusBits) bool {
	switch s.line {
	case "cts":
		return b.CTS
	case "dsr":
		return b.DSR
	case "ri":
		return b.RI
	default:
		return b.DCD
	}
}

// Close закрывает порт
func (s *Serial) Close() error {
	var err error
	s.once.Do(func() {
		if s.port != nil {
			err = s.port.Close()
		}
	})
	return err
}
