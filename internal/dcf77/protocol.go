// Package dcf77 — декодер сигнала времени DCF77: классификация интервалов между
// фронтами, накопление 59-битного кадра, проверка и передача времени в шкалу часов.
package dcf77

// Level — уровень сигнала на выходе приёмника. High — импульс (понижение несущей).
type Level uint8

const (
	Low Level = iota
	High
)

func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// Границы интервалов в миллисекундах. Все окна открытые.
const (
	minuteGapMs = 1500 // пауза перед фронтом вверх длиннее — начало минуты
	oneMinMs    = 160  // импульс "1": (160, 240)
	oneMaxMs    = 240
	zeroMinMs   = 60 // импульс "0": (60, 140)
	zeroMaxMs   = 140
)

// FrameBits — число бит в кадре между двумя метками минуты.
const FrameBits = 59

// maxBits — после стольких бит без метки минуты приём считается рассинхронизированным.
const maxBits = 60

// Позиции одиночных бит кадра.
const (
	bitMinuteStart = 0  // всегда 0
	bitSummerTime  = 17 // CEST
	bitWinterTime  = 18 // CET; ровно один из 17/18 установлен
	bitTimeStart   = 20 // всегда 1
)

// field — диапазон бит кадра [first, last] включительно.
type field struct {
	first, last int
}

// Поля значений (BCD).
var (
	fieldMinutes = field{21, 27}
	fieldHours   = field{29, 34}
	fieldDay     = field{36, 41}
	fieldWeekday = field{42, 44}
	fieldMonth   = field{45, 49}
	fieldYear    = field{50, 57}
)

// Сегменты проверки чётности: поле значения плюс бит чётности.
var (
	segmentMinutes = field{21, 28}
	segmentHours   = field{29, 35}
	segmentDate    = field{36, 58}
)

// Bits — кадр как битовая карта; бит N — секунда N минуты.
type Bits uint64

// Get возвращает значение бита pos.
func (b Bits) Get(pos int) bool {
	return b&(1<<uint(pos)) != 0
}

// Set устанавливает бит pos в v.
func (b *Bits) Set(pos int, v bool) {
	if v {
		*b |= 1 << uint(pos)
	} else {
		*b &^= 1 << uint(pos)
	}
}

// sum складывает биты поля с весами BCD 1,2,4,8,10,20,40,80.
func (b Bits) sum(f field) int {
	mult, res := 1, 0
	for pos := f.first; pos <= f.last; pos++ {
		if b.Get(pos) {
			res += mult
		}
		if mult == 8 {
			mult = 10
		} else {
			mult <<= 1
		}
	}
	return res
}

// odd возвращает true при нечётном числе единиц в сегменте.
func (b Bits) odd(f field) bool {
	res := false
	for pos := f.first; pos <= f.last; pos++ {
		if b.Get(pos) {
			res = !res
		}
	}
	return res
}

// put записывает v в поле f в BCD: единицы двоично в первые 4 бита, десятки — в остальные.
func (b *Bits) put(f field, v int) {
	units, tens := v%10, v/10
	for i, pos := 0, f.first; pos <= f.last; i, pos = i+1, pos+1 {
		if i < 4 {
			b.Set(pos, units>>i&1 == 1)
		} else {
			b.Set(pos, tens>>(i-4)&1 == 1)
		}
	}
}
