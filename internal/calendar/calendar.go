// Package calendar — календарная арифметика для часов: длина месяца и високосный год
// по пролептическому григорианскому правилу.
package calendar

// longMonths — битовая маска месяцев с 31 днём (бит N = месяц N): янв, мар, май, июл, авг, окт, дек.
const longMonths uint16 = 0x15AA

// IsLeapYear возвращает true для високосного года: делится на 4, но не на 100, кроме кратных 400.
func IsLeapYear(year uint16) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth возвращает число дней в месяце (1–12) года year.
// Для месяца вне диапазона 1–12 возвращает 0.
func DaysInMonth(month uint8, year uint16) uint8 {
	switch {
	case month < 1 || month > 12:
		return 0
	case month == 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case (longMonths>>month)&1 == 1:
		return 31
	default:
		return 30
	}
}
