package display

import (
	"fmt"

	"github.com/shiwa/timecard-mini/dcfclock/internal/logger"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// LogSwitch только пишет в лог (нет управляющего пина).
type LogSwitch struct{}

func (LogSwitch) On() error {
	logger.Info("display: hv on")
	return nil
}

func (LogSwitch) Off() error {
	logger.Info("display: hv off")
	return nil
}

// outPin — часть gpio.PinOut, нужная выключателю.
type outPin interface {
	Out(l gpio.Level) error
}

// PinSwitch — вход отключения высоковольтного источника: высокий уровень выключает питание.
type PinSwitch struct {
	pin outPin
}

// NewPinSwitch открывает пин name через periph.
func NewPinSwitch(name string) (*PinSwitch, error) {
	p, err := openPin(name)
	if err != nil {
		return nil, err
	}
	return &PinSwitch{pin: p}, nil
}

func openPin(name string) (gpio.PinIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio %s: not found", name)
	}
	return p, nil
}

func (s *PinSwitch) On() error {
	return s.pin.Out(gpio.Low)
}

func (s *PinSwitch) Off() error {
	return s.pin.Out(gpio.High)
}

// LED — индикатор приёма, меняет состояние на каждом спаде сигнала DCF77.
type LED struct {
	pin outPin
	on  bool
}

// NewLED открывает пин name и гасит индикатор.
func NewLED(name string) (*LED, error) {
	p, err := openPin(name)
	if err != nil {
		return nil, err
	}
	l := &LED{pin: p}
	return l, p.Out(gpio.Low)
}

// Toggle переключает индикатор.
func (l *LED) Toggle() error {
	l.on = !l.on
	return l.pin.Out(gpio.Level(l.on))
}
