package source

import (
	"context"

	"github.com/shiwa/timecard-mini/dcfclock/internal/dcf77"
)

// EdgeSource — источник фронтов сигнала приёмника DCF77 (serial, gpio, simulated).
type EdgeSource interface {
	// Name возвращает имя источника для логов
	Name() string
	// Run передаёт в emit каждый наблюдаемый уровень сигнала до отмены ctx.
	// emit вызывается из одной горутины; повторы одного уровня допустимы.
	Run(ctx context.Context, emit func(dcf77.Level)) error
	// Close освобождает ресурсы
	Close() error
}

func levelOf(active, invert bool) dcf77.Level {
	if active != invert {
		return dcf77.High
	}
	return dcf77.Low
}
