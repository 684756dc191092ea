// Package logger — единый вывод логов dcfclock поверх zerolog с учётом quiet.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Quiet при true отключает информационные сообщения (Info, Debug); Warn и Error выводятся всегда.
var Quiet bool

var log = newLogger(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

// Options — параметры вывода логов.
type Options struct {
	Level string // debug, info, warn, error; пусто = info
	File  string // дополнительно писать в файл с ротацией
	Quiet bool
}

// Init настраивает уровень и приёмники логов. Вызывается один раз при старте.
func Init(o Options) error {
	level := zerolog.InfoLevel
	if o.Level != "" {
		l, err := zerolog.ParseLevel(o.Level)
		if err != nil {
			return fmt.Errorf("log level %q: %w", o.Level, err)
		}
		level = l
	}
	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}
	if o.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    1, // MB
			MaxBackups: 2,
			MaxAge:     7,
		})
	}
	log = newLogger(zerolog.MultiLevelWriter(writers...)).Level(level)
	Quiet = o.Quiet
	return nil
}

// SetOutput направляет логи в w (для тестов и встраивания).
func SetOutput(w io.Writer) {
	log = newLogger(w)
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("app", "dcfclock").Logger()
}

// Debug выводит отладочное сообщение, если Quiet == false.
func Debug(format string, args ...interface{}) {
	if Quiet {
		return
	}
	log.Debug().Msgf(format, args...)
}

// Info выводит информационное сообщение, если Quiet == false.
func Info(format string, args ...interface{}) {
	if Quiet {
		return
	}
	log.Info().Msgf(format, args...)
}

// Warn выводит предупреждение всегда.
func Warn(format string, args ...interface{}) {
	log.Warn().Msgf(format, args...)
}

// Error выводит сообщение об ошибке всегда.
func Error(format string, args ...interface{}) {
	log.Error().Msgf(format, args...)
}

// Fatal выводит сообщение и завершает процесс.
func Fatal(format string, args ...interface{}) {
	log.Fatal().Msgf(format, args...)
}
