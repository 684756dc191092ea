//go:build linux

package clockadj

import (
	"time"

	"golang.org/x/sys/unix"
)

// Slew плавно сдвигает системное время на offsetNs через adjtimex (ADJ_OFFSET, микросекунды).
func Slew(offsetNs int64) error {
	offsetUs := offsetNs / 1000
	if offsetUs == 0 {
		return nil
	}
	buf := &unix.Timex{
		Modes:  unix.ADJ_OFFSET,
		Offset: offsetUs,
	}
	_, err := unix.Adjtimex(buf)
	return err
}

// Step устанавливает системное время скачком.
func Step(t time.Time) error {
	ts := unix.NsecToTimespec(t.UnixNano())
	return unix.ClockSettime(unix.CLOCK_REALTIME, &ts)
}
