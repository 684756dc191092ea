package timebase

import (
	"fmt"
	"time"

	"github.com/shiwa/timecard-mini/dcfclock/internal/calendar"
)

// Wallclock — календарное время часов с точностью до миллисекунды.
type Wallclock struct {
	Year        uint16
	Month       uint8
	Day         uint8
	Hour        uint8
	Minute      uint8
	Second      uint8
	Millisecond uint16
}

// Epoch — начальное значение часов при старте: 01.01.1970 00:00:00.000.
var Epoch = Wallclock{Year: 1970, Month: 1, Day: 1}

// Valid проверяет, что значение — допустимая дата по григорианскому календарю.
func (w Wallclock) Valid() bool {
	return w.Year >= 1970 &&
		w.Month >= 1 && w.Month <= 12 &&
		w.Day >= 1 && w.Day <= calendar.DaysInMonth(w.Month, w.Year) &&
		w.Hour < 24 && w.Minute < 60 && w.Second < 60 && w.Millisecond < 1000
}

// Time переводит значение в time.Time в зоне loc (nil = UTC).
func (w Wallclock) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(int(w.Year), time.Month(w.Month), int(w.Day),
		int(w.Hour), int(w.Minute), int(w.Second), int(w.Millisecond)*int(time.Millisecond), loc)
}

// FromTime строит Wallclock из t (зона t сохраняется, миллисекунды усекаются).
func FromTime(t time.Time) Wallclock {
	return Wallclock{
		Year:        uint16(t.Year()),
		Month:       uint8(t.Month()),
		Day:         uint8(t.Day()),
		Hour:        uint8(t.Hour()),
		Minute:      uint8(t.Minute()),
		Second:      uint8(t.Second()),
		Millisecond: uint16(t.Nanosecond() / int(time.Millisecond)),
	}
}

func (w Wallclock) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%03d",
		w.Year, w.Month, w.Day, w.Hour, w.Minute, w.Second, w.Millisecond)
}

// advance увеличивает время на одну миллисекунду с переносом по всем полям.
// Возвращает true, если при этом сменилась минута.
func (w *Wallclock) advance() (minuteRolled bool) {
	w.Millisecond++
	if w.Millisecond < 1000 {
		return false
	}
	w.Millisecond = 0
	w.Second++
	if w.Second < 60 {
		return false
	}
	w.Second = 0
	w.Minute++
	if w.Minute == 60 {
		w.Minute = 0
		w.Hour++
		if w.Hour == 24 {
			w.Hour = 0
			w.Day++
			if w.Day > calendar.DaysInMonth(w.Month, w.Year) {
				w.Day = 1
				w.Month++
				if w.Month == 13 {
					w.Month = 1
					w.Year++
				}
			}
		}
	}
	return true
}
