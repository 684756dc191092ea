// Package display — индикация времени и политика питания индикаторов.
//
// Refresh вызывается шкалой времени дважды в секунду в контексте тика: он только
// применяет политику питания и без блокировки передаёт снимок в горутину вывода.
//
// Политика: импульсный высоковольтный источник индикаторов мешает приёму DCF77,
// поэтому до синхронизации он выключен. После синхронизации источник включается,
// а приёмник отключается; ежедневно в HVOffHour:HVOffMinute при отсутствии
// синхронизации источник снова выключается и приёмник включается до следующего кадра.
package display

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/shiwa/timecard-mini/dcfclock/internal/logger"
	"github.com/shiwa/timecard-mini/dcfclock/internal/timebase"
)

// Receiver — включение и отключение приёма (dcf77.Decoder).
type Receiver interface {
	Enable()
	Disable()
}

// Switch — управление высоковольтным питанием индикаторов.
type Switch interface {
	On() error
	Off() error
}

// Config — параметры панели.
type Config struct {
	Out         io.Writer
	Synced      func() bool // timebase.Engine.IsSynced
	Receiver    Receiver
	HV          Switch
	HVOffHour   uint8
	HVOffMinute uint8
}

// Panel — индикатор часов.
type Panel struct {
	cfg    Config
	frames chan timebase.Wallclock
	hvOn   atomic.Bool
}

// New создаёт панель и выключает высоковольтное питание до синхронизации.
func New(cfg Config) *Panel {
	if cfg.HV == nil {
		cfg.HV = LogSwitch{}
	}
	if cfg.Synced == nil {
		cfg.Synced = func() bool { return false }
	}
	p := &Panel{
		cfg:    cfg,
		frames: make(chan timebase.Wallclock, 1),
	}
	if err := cfg.HV.Off(); err != nil {
		logger.Warn("display: hv off: %v", err)
	}
	return p
}

// Refresh — обработчик timebase.RefreshFunc.
func (p *Panel) Refresh(now timebase.Wallclock) {
	switch {
	case p.cfg.Synced():
		p.setHV(true)
		if p.cfg.Receiver != nil {
			p.cfg.Receiver.Disable()
		}
	case now.Hour == p.cfg.HVOffHour && now.Minute == p.cfg.HVOffMinute && now.Second == 0:
		p.setHV(false)
		if p.cfg.Receiver != nil {
			p.cfg.Receiver.Enable()
		}
	}

	select {
	case p.frames <- now:
	default:
		// вывод не успевает — кадр пропускается
	}
}

// HVOn сообщает, включено ли высоковольтное питание.
func (p *Panel) HVOn() bool {
	return p.hvOn.Load()
}

func (p *Panel) setHV(on bool) {
	if p.hvOn.Swap(on) == on {
		return
	}
	var err error
	if on {
		err = p.cfg.HV.On()
	} else {
		err = p.cfg.HV.Off()
	}
	if err != nil {
		logger.Warn("display: hv switch: %v", err)
	}
}

// Run выводит снимки до отмены ctx.
func (p *Panel) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-p.frames:
			if p.cfg.Out == nil {
				continue
			}
			if _, err := fmt.Fprintf(p.cfg.Out, "\r%s", Render(now)); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}

// Render возвращает показания индикаторов: ЧЧ:ММ:СС и точку, горящую первые полсекунды.
func Render(now timebase.Wallclock) string {
	dot := ' '
	if now.Millisecond < 500 {
		dot = '.'
	}
	return fmt.Sprintf("%02d:%02d:%02d%c", now.Hour, now.Minute, now.Second, dot)
}
