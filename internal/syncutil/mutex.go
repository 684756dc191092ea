//go:build !deadlock

// Package syncutil — мьютексы с опциональным детектором взаимоблокировок.
// Сборка с -tags=deadlock подключает github.com/sasha-s/go-deadlock.
package syncutil

import "sync"

// DeadlockEnabled — true, если собран детектор взаимоблокировок.
const DeadlockEnabled = false

// Mutex — взаимоисключающая блокировка.
type Mutex struct {
	sync.Mutex
}
