package timebase

// Status — состояние синхронизации часов.
type Status int

const (
	StatusUnavailable Status = iota // синхронизации ещё не было
	StatusUnlocked                  // была, но устарела: часы идут свободно
	StatusLocked                    // последняя синхронизация свежая
)

func (s Status) String() string {
	switch s {
	case StatusUnavailable:
		return "unavailable"
	case StatusUnlocked:
		return "unlocked"
	case StatusLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// IsUsable возвращает true, если времени часов можно доверять как синхронизированному.
func (s Status) IsUsable() bool {
	return s == StatusLocked
}
