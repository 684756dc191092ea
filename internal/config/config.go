package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config — конфигурация dcfclock (файл dcfclock.yml).
type Config struct {
	Clock    ClockConfig    `yaml:"clock"`
	Receiver ReceiverConfig `yaml:"receiver"`
	Display  DisplayConfig  `yaml:"display"`
	Debug    DebugConfig    `yaml:"debug"`
	Log      LogConfig      `yaml:"log"`

	// AdjustClock — устанавливать системное время по каждому принятому кадру (нужен root).
	AdjustClock bool `yaml:"adjust_clock"`
	// StepLimit — порог расхождения, выше которого время устанавливается скачком,
	// ниже — плавной коррекцией (например "500ms"); пусто — 500ms.
	StepLimit string `yaml:"step_limit"`
}

// ClockConfig — шкала времени.
type ClockConfig struct {
	StaleMinutes uint8 `yaml:"stale_minutes"` // минут без синхронизации до потери; 0 = 5
}

// ReceiverConfig — приёмник DCF77.
type ReceiverConfig struct {
	Type   string `yaml:"type"`   // serial, gpio, simulated
	Device string `yaml:"device"` // serial: порт
	Baud   int    `yaml:"baud"`
	Line   string `yaml:"line"` // serial: dcd, cts, dsr
	Pin    string `yaml:"pin"`  // gpio: имя пина periph (GPIO17)
	Invert bool   `yaml:"invert"`
	// simulated: начальное время передатчика (RFC 3339); пусто — текущее
	Start string `yaml:"start"`
	Poll  string `yaml:"poll"` // serial: период опроса линии, по умолчанию 2ms
}

// DisplayConfig — индикация и политика питания.
type DisplayConfig struct {
	Enabled     bool   `yaml:"enabled"`
	HVPin       string `yaml:"hv_pin"`  // пин отключения высоковольтного питания; пусто — только лог
	LEDPin      string `yaml:"led_pin"` // индикатор приёма битов; пусто — нет
	HVOffHour   uint8  `yaml:"hv_off_hour"`
	HVOffMinute uint8  `yaml:"hv_off_minute"`
}

// DebugConfig — отладочный вывод (аналог UART прошивки).
type DebugConfig struct {
	Device         string `yaml:"device"` // последовательный порт; пусто — в лог
	Baud           int    `yaml:"baud"`
	StatusInterval string `yaml:"status_interval"` // пусто или 0 — без строки состояния
	Trace          bool   `yaml:"trace"`           // печатать принятые биты
}

// LogConfig — журнал.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default возвращает конфиг по умолчанию
func Default() *Config {
	return &Config{
		Clock: ClockConfig{StaleMinutes: 5},
		Receiver: ReceiverConfig{
			Type:   "serial",
			Device: "/dev/ttyS0",
			Baud:   9600,
			Line:   "dcd",
			Poll:   "2ms",
		},
		Display: DisplayConfig{
			Enabled:   true,
			HVOffHour: 4,
		},
		Debug: DebugConfig{
			Baud: 9600,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load читает конфиг из YAML
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate проверяет значения, которые нельзя исправить подстановкой по умолчанию.
func (c *Config) Validate() error {
	switch c.Receiver.Type {
	case "serial", "gpio", "simulated":
	default:
		return fmt.Errorf("receiver.type: unknown %q", c.Receiver.Type)
	}
	switch c.Receiver.Line {
	case "dcd", "cts", "dsr", "ri":
	default:
		return fmt.Errorf("receiver.line: unknown %q", c.Receiver.Line)
	}
	if c.Receiver.Type == "gpio" && c.Receiver.Pin == "" {
		return fmt.Errorf("receiver.pin required for gpio")
	}
	if c.Clock.StaleMinutes >= 60 {
		return fmt.Errorf("clock.stale_minutes: %d out of range", c.Clock.StaleMinutes)
	}
	if c.Display.HVOffHour > 23 || c.Display.HVOffMinute > 59 {
		return fmt.Errorf("display: hv off time %02d:%02d out of range", c.Display.HVOffHour, c.Display.HVOffMinute)
	}
	return nil
}

// StatusEvery возвращает период строки состояния (0 — выключено).
func (d DebugConfig) StatusEvery() time.Duration {
	return parseDuration(d.StatusInterval, 0)
}

// StepThreshold возвращает порог step/slew для adjust_clock.
func (c *Config) StepThreshold() time.Duration {
	return parseDuration(c.StepLimit, 500*time.Millisecond)
}

// PollEvery возвращает период опроса линии приёмника.
func (r ReceiverConfig) PollEvery() time.Duration {
	return parseDuration(r.Poll, 2*time.Millisecond)
}

func parseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

func applyDefaults(c *Config) {
	d := Default()
	if c.Clock.StaleMinutes == 0 {
		c.Clock.StaleMinutes = d.Clock.StaleMinutes
	}
	if c.Receiver.Type == "" {
		c.Receiver.Type = d.Receiver.Type
	}
	if c.Receiver.Type == "serial" && c.Receiver.Device == "" {
		c.Receiver.Device = d.Receiver.Device
	}
	if c.Receiver.Baud == 0 {
		c.Receiver.Baud = d.Receiver.Baud
	}
	if c.Receiver.Line == "" {
		c.Receiver.Line = d.Receiver.Line
	}
	if c.Debug.Baud == 0 {
		c.Debug.Baud = d.Debug.Baud
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
