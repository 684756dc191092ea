// Package timebase — опорная шкала времени часов: календарное время и скользящий
// миллисекундный счётчик, продвигаемые тиком 1 мс, плюс учёт свежести синхронизации.
//
// Всё состояние закрыто одним мьютексом, который держится только на время
// копирования или обновления; наружу отдаются только копии.
package timebase

import "github.com/shiwa/timecard-mini/dcfclock/internal/syncutil"

// DefaultStaleMinutes — сколько минут без синхронизации допускается,
// прежде чем часы перестанут считаться синхронизированными.
const DefaultStaleMinutes = 5

// RefreshFunc вызывается из Tick дважды в секунду (на 0 и 500 мс) со снимком времени.
// Выполняется в контексте тика: должна быть быстрой и не блокироваться.
type RefreshFunc func(now Wallclock)

// Engine — владелец календарного времени, счётчика миллисекунд и состояния синхронизации.
type Engine struct {
	mu           syncutil.Mutex
	now          Wallclock
	rmsec        uint16 // скользящий счётчик, переполняется после 65535
	synced       bool
	everSynced   bool
	lastSyncMin  uint8
	staleMinutes uint8
	refresh      RefreshFunc
}

// Option настраивает Engine при создании.
type Option func(*Engine)

// WithStaleMinutes задаёт порог устаревания синхронизации в минутах (0 — по умолчанию).
func WithStaleMinutes(n uint8) Option {
	return func(e *Engine) {
		if n > 0 && n < 60 {
			e.staleMinutes = n
		}
	}
}

// WithStart задаёт начальное время вместо Epoch (невалидное значение игнорируется).
func WithStart(w Wallclock) Option {
	return func(e *Engine) {
		if w.Valid() {
			e.now = w
		}
	}
}

// New создаёт Engine с временем Epoch, несинхронизированный.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:          Epoch,
		staleMinutes: DefaultStaleMinutes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnRefresh регистрирует обработчик обновления индикации (nil снимает).
func (e *Engine) OnRefresh(fn RefreshFunc) {
	e.mu.Lock()
	e.refresh = fn
	e.mu.Unlock()
}

// Tick продвигает время на 1 мс. Вызывается источником тиков раз в миллисекунду.
// На 0 и 500 мс синхронно вызывает обработчик обновления, уже после снятия блокировки.
func (e *Engine) Tick() {
	e.mu.Lock()
	e.rmsec++
	if e.now.advance() && e.synced {
		elapsed := (60 + int(e.now.Minute) - int(e.lastSyncMin)) % 60
		if elapsed > int(e.staleMinutes) {
			e.synced = false
		}
	}
	var fn RefreshFunc
	var snap Wallclock
	if e.now.Millisecond == 0 || e.now.Millisecond == 500 {
		fn, snap = e.refresh, e.now
	}
	e.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

// ElapsedMs возвращает скользящий счётчик миллисекунд (только для измерения интервалов).
func (e *Engine) ElapsedMs() uint16 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rmsec
}

// Snapshot возвращает согласованную копию текущего времени.
func (e *Engine) Snapshot() Wallclock {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

// SetSynced целиком заменяет время проверенным значением и отмечает синхронизацию.
func (e *Engine) SetSynced(w Wallclock) {
	e.mu.Lock()
	e.now = w
	e.synced = true
	e.everSynced = true
	e.lastSyncMin = w.Minute
	e.mu.Unlock()
}

// IsSynced возвращает true, пока последняя синхронизация не устарела.
func (e *Engine) IsSynced() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.synced
}

// Status возвращает состояние синхронизации.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.synced:
		return StatusLocked
	case e.everSynced:
		return StatusUnlocked
	default:
		return StatusUnavailable
	}
}
