//go:build deadlock

// Package syncutil — мьютексы с опциональным детектором взаимоблокировок.
// Сборка с -tags=deadlock подключает github.com/sasha-s/go-deadlock.
package syncutil

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockEnabled — true, если собран детектор взаимоблокировок.
const DeadlockEnabled = true

func init() {
	// критические секции часов короче миллисекунды; всё дольше секунды — ошибка
	deadlock.Opts.DeadlockTimeout = time.Second
}

// Mutex — взаимоисключающая блокировка с детектором.
type Mutex struct {
	deadlock.Mutex
}
