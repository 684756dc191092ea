package dcf77

import (
	"errors"
	"fmt"
	"time"

	"github.com/shiwa/timecard-mini/dcfclock/internal/calendar"
	"github.com/shiwa/timecard-mini/dcfclock/internal/timebase"
)

// Причины отбраковки кадра.
var (
	ErrStartBit      = errors.New("dcf77: minute start bit is 1")
	ErrZoneBits      = errors.New("dcf77: time zone bits are equal")
	ErrTimeStartBit  = errors.New("dcf77: time start bit is 0")
	ErrParityMinutes = errors.New("dcf77: minutes parity")
	ErrParityHours   = errors.New("dcf77: hours parity")
	ErrParityDate    = errors.New("dcf77: date parity")
	ErrImplausible   = errors.New("dcf77: implausible value")
)

// Зоны, в которых передаётся время.
var (
	zoneCET  = time.FixedZone("CET", 1*60*60)
	zoneCEST = time.FixedZone("CEST", 2*60*60)
)

// Location возвращает зону передатчика: Europe/Berlin, а без базы зон — постоянный CET.
func Location() *time.Location {
	if loc, err := time.LoadLocation("Europe/Berlin"); err == nil {
		return loc
	}
	return zoneCET
}

// Frame — декодированная метка времени: минута, которая начинается с метки после кадра.
type Frame struct {
	Year    uint16 // полный год, 2000–2099
	Month   uint8
	Day     uint8
	Weekday uint8 // 1 = понедельник … 7 = воскресенье
	Hour    uint8
	Minute  uint8
	Summer  bool // CEST, иначе CET
}

// Wallclock возвращает время начала минуты (секунды и миллисекунды — 0).
func (f Frame) Wallclock() timebase.Wallclock {
	return timebase.Wallclock{
		Year:   f.Year,
		Month:  f.Month,
		Day:    f.Day,
		Hour:   f.Hour,
		Minute: f.Minute,
	}
}

// Time возвращает время кадра с зоной CET/CEST.
func (f Frame) Time() time.Time {
	loc := zoneCET
	if f.Summer {
		loc = zoneCEST
	}
	return f.Wallclock().Time(loc)
}

func (f Frame) String() string {
	zone := "CET"
	if f.Summer {
		zone = "CEST"
	}
	return fmt.Sprintf("%02d.%02d.%02d %02d:%02d %s", f.Day, f.Month, f.Year%100, f.Hour, f.Minute, zone)
}

// Validate проверяет структуру кадра: служебные биты и три сегмента чётности.
// Возвращает все нарушения сразу (errors.Join) или nil.
func Validate(b Bits) error {
	var errs []error
	if b.Get(bitMinuteStart) {
		errs = append(errs, ErrStartBit)
	}
	if b.Get(bitSummerTime) == b.Get(bitWinterTime) {
		errs = append(errs, ErrZoneBits)
	}
	if !b.Get(bitTimeStart) {
		errs = append(errs, ErrTimeStartBit)
	}
	if b.odd(segmentMinutes) {
		errs = append(errs, ErrParityMinutes)
	}
	if b.odd(segmentHours) {
		errs = append(errs, ErrParityHours)
	}
	if b.odd(segmentDate) {
		errs = append(errs, ErrParityDate)
	}
	return errors.Join(errs...)
}

// Decode проверяет кадр и извлекает из него время.
func Decode(b Bits) (Frame, error) {
	if err := Validate(b); err != nil {
		return Frame{}, err
	}
	minute := b.sum(fieldMinutes)
	hour := b.sum(fieldHours)
	day := b.sum(fieldDay)
	month := b.sum(fieldMonth)
	year := b.sum(fieldYear)
	if minute > 59 || hour > 23 || month > 12 || year > 99 {
		return Frame{}, fmt.Errorf("%w: %02d:%02d month %d year %d", ErrImplausible, hour, minute, month, year)
	}
	f := Frame{
		Year:    uint16(2000 + year),
		Month:   uint8(month),
		Day:     uint8(day),
		Weekday: uint8(b.sum(fieldWeekday)),
		Hour:    uint8(hour),
		Minute:  uint8(minute),
		Summer:  b.Get(bitSummerTime),
	}
	// часы принимают только допустимую дату
	if f.Month < 1 || f.Day < 1 || f.Day > calendar.DaysInMonth(f.Month, f.Year) {
		return Frame{}, fmt.Errorf("%w: day %d month %d", ErrImplausible, day, month)
	}
	return f, nil
}

// Encode собирает корректный кадр для f: служебные биты, BCD-поля и биты чётности.
func Encode(f Frame) Bits {
	var b Bits
	b.Set(bitSummerTime, f.Summer)
	b.Set(bitWinterTime, !f.Summer)
	b.Set(bitTimeStart, true)
	b.put(fieldMinutes, int(f.Minute))
	b.put(fieldHours, int(f.Hour))
	b.put(fieldDay, int(f.Day))
	b.put(fieldWeekday, int(f.Weekday))
	b.put(fieldMonth, int(f.Month))
	b.put(fieldYear, int(f.Year%100))
	for _, seg := range []field{segmentMinutes, segmentHours, segmentDate} {
		if b.odd(seg) {
			b.Set(seg.last, !b.Get(seg.last))
		}
	}
	return b
}

// FrameFor строит Frame из гражданского времени t (CET/CEST определяется зоной t).
func FrameFor(t time.Time) Frame {
	_, off := t.Zone()
	wd := uint8(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return Frame{
		Year:    uint16(t.Year()),
		Month:   uint8(t.Month()),
		Day:     uint8(t.Day()),
		Weekday: wd,
		Hour:    uint8(t.Hour()),
		Minute:  uint8(t.Minute()),
		Summer:  off == 2*60*60,
	}
}
