package source

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shiwa/timecard-mini/dcfclock/internal/config"
	"github.com/shiwa/timecard-mini/dcfclock/internal/dcf77"
)

// NewFromConfig создаёт EdgeSource по секции receiver конфига.
func NewFromConfig(c config.ReceiverConfig, clock clockwork.Clock) (EdgeSource, error) {
	switch c.Type {
	case "serial":
		dev := c.Device
		if dev == "" {
			dev = "/dev/ttyS0"
		}
		return NewSerial(SerialConfig{
			Device: dev,
			Baud:   c.Baud,
			Line:   c.Line,
			Invert: c.Invert,
			Poll:   c.PollEvery(),
		}, clock)
	case "gpio":
		if c.Pin == "" {
			return nil, fmt.Errorf("gpio: pin required")
		}
		return NewGPIO(c.Pin, c.Invert)
	case "simulated":
		start := clock.Now()
		if c.Start != "" {
			t, err := time.Parse(time.RFC3339, c.Start)
			if err != nil {
				return nil, fmt.Errorf("simulated start: %w", err)
			}
			start = t
		}
		return NewSimulated(clock, start.In(dcf77.Location())), nil
	default:
		return nil, fmt.Errorf("unknown receiver type: %s", c.Type)
	}
}
