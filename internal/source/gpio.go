package source

import (
	"context"
	"fmt"
	"time"

	"github.com/shiwa/timecard-mini/dcfclock/internal/dcf77"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// edgeWait — сколько ждать фронт, прежде чем снова проверить ctx.
const edgeWait = 100 * time.Millisecond

// edgePin — часть gpio.PinIO, нужная приёмнику.
type edgePin interface {
	Name() string
	Read() gpio.Level
	WaitForEdge(timeout time.Duration) bool
}

// GPIO — источник фронтов: выход приёмника на пине GPIO (прерывание по обоим фронтам).
type GPIO struct {
	pin    edgePin
	invert bool
}

// NewGPIO инициализирует драйверы periph и настраивает пин name на вход с прерыванием по обоим фронтам.
func NewGPIO(name string, invert bool) (*GPIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio %s: not found", name)
	}
	if err := p.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("gpio %s: %w", name, err)
	}
	return &GPIO{pin: p, invert: invert}, nil
}

// Name возвращает имя источника
func (g *GPIO) Name() string {
	return "gpio:" + g.pin.Name()
}

// Run ждёт фронты и сообщает уровень после каждого.
func (g *GPIO) Run(ctx context.Context, emit func(dcf77.Level)) error {
	emit(levelOf(g.pin.Read() == gpio.High, g.invert))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if g.pin.WaitForEdge(edgeWait) {
			emit(levelOf(g.pin.Read() == gpio.High, g.invert))
		}
	}
}

// Close снимает прерывание с пина
func (g *GPIO) Close() error {
	if p, ok := g.pin.(gpio.PinIn); ok {
		return p.In(gpio.PullNoChange, gpio.NoEdge)
	}
	return nil
}
