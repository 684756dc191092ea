//go:build !linux

package clockadj

import "time"

// Slew — заглушка на не-Linux.
func Slew(offsetNs int64) error {
	_ = offsetNs
	return nil
}

// Step — заглушка на не-Linux.
func Step(t time.Time) error {
	_ = t
	return nil
}
