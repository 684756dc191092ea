// Package clockrun собирает часы DCF77 из конфига и запускает их до отмены контекста:
// тик шкалы времени, приём фронтов, индикация, отладочный вывод и коррекция системного времени.
package clockrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/shiwa/timecard-mini/dcfclock/internal/clockadj"
	"github.com/shiwa/timecard-mini/dcfclock/internal/config"
	"github.com/shiwa/timecard-mini/dcfclock/internal/dcf77"
	"github.com/shiwa/timecard-mini/dcfclock/internal/debugport"
	"github.com/shiwa/timecard-mini/dcfclock/internal/display"
	"github.com/shiwa/timecard-mini/dcfclock/internal/logger"
	"github.com/shiwa/timecard-mini/dcfclock/internal/source"
	"github.com/shiwa/timecard-mini/dcfclock/internal/ticker"
	"github.com/shiwa/timecard-mini/dcfclock/internal/timebase"
	"golang.org/x/sync/errgroup"
)

// Options переопределяет зависимости (тесты, встраивание). Нулевое значение — рабочий режим.
type Options struct {
	Clock    clockwork.Clock   // по умолчанию реальные часы
	Source   source.EdgeSource // по умолчанию из cfg.Receiver
	Adjuster clockadj.Adjuster // по умолчанию системные часы
	HV       display.Switch    // по умолчанию из cfg.Display.HVPin
	Display  io.Writer         // по умолчанию stdout
	Debug    io.Writer         // по умолчанию из cfg.Debug.Device
	Tracers  []dcf77.Tracer    // дополнительные наблюдатели приёма
}

// Clock — собранные часы.
type Clock struct {
	cfg     *config.Config
	clock   clockwork.Clock
	engine  *timebase.Engine
	decoder *dcf77.Decoder
	src     source.EdgeSource
	panel   *display.Panel
	led     *display.LED
	debug   *debugport.Port
	host    *hostClock
}

// New собирает часы по cfg. Источник открывается сразу; Close освобождает его.
func New(cfg *config.Config, opts Options) (*Clock, error) {
	if cfg == nil {
		return nil, errors.New("clockrun: nil config")
	}
	c := &Clock{cfg: cfg, clock: opts.Clock}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	c.engine = timebase.New(timebase.WithStaleMinutes(cfg.Clock.StaleMinutes))

	var err error
	if opts.Debug != nil {
		c.debug = debugport.New(opts.Debug)
	} else if c.debug, err = debugport.Open(cfg.Debug.Device, cfg.Debug.Baud); err != nil {
		return nil, fmt.Errorf("debug port: %w", err)
	}

	tracers := dcf77.Tracers{logTracer{}}
	if cfg.Debug.Trace {
		tracers = append(tracers, debugport.NewTracer(c.debug))
	}
	if cfg.AdjustClock {
		adj := opts.Adjuster
		if adj == nil {
			adj = clockadj.System{}
		}
		c.host = newHostClock(adj, c.clock, cfg.StepThreshold())
		tracers = append(tracers, c.host)
	}
	tracers = append(tracers, opts.Tracers...)
	c.decoder = dcf77.NewDecoder(c.engine, dcf77.WithTracer(tracers))

	if cfg.Display.Enabled {
		hv := opts.HV
		if hv == nil {
			hv, err = newHV(cfg.Display.HVPin)
			if err != nil {
				_ = c.debug.Close()
				return nil, err
			}
		}
		out := opts.Display
		if out == nil {
			out = os.Stdout
		}
		c.panel = display.New(display.Config{
			Out:         out,
			Synced:      c.engine.IsSynced,
			Receiver:    c.decoder,
			HV:          hv,
			HVOffHour:   cfg.Display.HVOffHour,
			HVOffMinute: cfg.Display.HVOffMinute,
		})
		c.engine.OnRefresh(c.panel.Refresh)

		if cfg.Display.LEDPin != "" {
			if c.led, err = display.NewLED(cfg.Display.LEDPin); err != nil {
				_ = c.debug.Close()
				return nil, fmt.Errorf("led pin: %w", err)
			}
		}
	}

	c.src = opts.Source
	if c.src == nil {
		c.src, err = source.NewFromConfig(cfg.Receiver, c.clock)
		if err != nil {
			_ = c.debug.Close()
			return nil, fmt.Errorf("receiver: %w", err)
		}
	}
	return c, nil
}

func newHV(pin string) (display.Switch, error) {
	if pin == "" {
		return display.LogSwitch{}, nil
	}
	s, err := display.NewPinSwitch(pin)
	if err != nil {
		return nil, fmt.Errorf("hv pin: %w", err)
	}
	return s, nil
}

// Engine возвращает шкалу времени.
func (c *Clock) Engine() *timebase.Engine {
	return c.engine
}

// Decoder возвращает декодер DCF77.
func (c *Clock) Decoder() *dcf77.Decoder {
	return c.decoder
}

// Run работает до отмены ctx или первой ошибки компонента.
func (c *Clock) Run(ctx context.Context) error {
	c.debug.Println("dcfclock starting")
	logger.Info("dcfclock: receiver=%s display=%v adjust_clock=%v stale=%dm",
		c.src.Name(), c.panel != nil, c.host != nil, c.cfg.Clock.StaleMinutes)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ticker.Run(ctx, c.clock, c.engine) })
	g.Go(func() error { return c.src.Run(ctx, c.handleEdge) })
	g.Go(func() error { return c.debug.Run(ctx) })
	if c.panel != nil {
		g.Go(func() error { return c.panel.Run(ctx) })
	}
	if every := c.cfg.Debug.StatusEvery(); every > 0 {
		g.Go(func() error { return c.debug.RunStatus(ctx, c.clock, every, c.engine) })
	}
	if c.host != nil {
		g.Go(func() error { return c.host.run(ctx) })
	}
	err := g.Wait()

	st := c.decoder.Stats()
	logger.Info("dcfclock: stopped at %s (%s), frames accepted=%d rejected=%d noise=%d",
		c.engine.Snapshot(), c.engine.Status(), st.Accepted, st.Rejected, st.Noise)
	return err
}

// handleEdge передаёт фронт декодеру; спад при включённом приёме мигает индикатором.
func (c *Clock) handleEdge(level dcf77.Level) {
	if c.led != nil && level == dcf77.Low && c.decoder.Enabled() {
		if err := c.led.Toggle(); err != nil {
			logger.Debug("led: %v", err)
		}
	}
	c.decoder.HandleEdge(level)
}

// Close освобождает источник и отладочный порт.
func (c *Clock) Close() error {
	return errors.Join(c.src.Close(), c.debug.Close())
}

// Run собирает часы по cfg и запускает их до отмены ctx.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	c, err := New(cfg, opts)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Run(ctx)
}
