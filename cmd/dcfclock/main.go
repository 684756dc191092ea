// dcfclock — часы, синхронизируемые по сигналу DCF77.
//
// Шкала времени идёт от тика 1 мс; приёмник DCF77 (линия модема, GPIO или
// симулятор) раз в минуту подводит её к принятому кадру. Время выводится на
// индикатор, отладочная трасса — в последовательный порт или лог.
//
// Использование:
//
//	dcfclock -config dcfclock.yml          — запуск
//	dcfclock -receiver simulated           — без приёмника, от симулятора
//	dcfclock -encode 2024-06-15T14:30:00+02:00 — показать кадр DCF77 для времени
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/shiwa/timecard-mini/dcfclock/internal/config"
	"github.com/shiwa/timecard-mini/dcfclock/internal/dcf77"
	"github.com/shiwa/timecard-mini/dcfclock/internal/logger"
	"github.com/shiwa/timecard-mini/dcfclock/pkg/clockrun"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигу (по умолчанию dcfclock.yml)")
	receiver := flag.String("receiver", "", "тип приёмника: serial, gpio, simulated (переопределяет config)")
	device := flag.String("device", "", "последовательный порт приёмника (переопределяет config)")
	adjust := flag.Bool("adjust-clock", false, "устанавливать системное время по принятым кадрам")
	encode := flag.String("encode", "", "вывести кадр DCF77 для времени RFC 3339 и выйти")
	quiet := flag.Bool("quiet", false, "меньше вывода")
	flag.Parse()

	if *encode != "" {
		if err := printFrame(*encode); err != nil {
			log.Fatalf("encode: %v", err)
		}
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *receiver != "" {
		cfg.Receiver.Type = *receiver
	}
	if *device != "" {
		cfg.Receiver.Device = *device
	}
	if *adjust {
		cfg.AdjustClock = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := logger.Init(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File, Quiet: *quiet}); err != nil {
		log.Fatalf("log: %v", err)
	}
	runWithShutdown(cfg)
}

// loadConfig читает конфиг; отсутствие файла по умолчанию не ошибка.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		path = "dcfclock.yml"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		return config.Default(), nil
	}
	return config.Load(path)
}

// runWithShutdown запускает часы; по SIGINT/SIGTERM контекст отменяется.
func runWithShutdown(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := clockrun.Run(ctx, cfg, clockrun.Options{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("%v", err)
	}
	logger.Info("завершение")
}

func printFrame(s string) error {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	f := dcf77.FrameFor(t.In(dcf77.Location()))
	bits := dcf77.Encode(f)
	var b strings.Builder
	for i := 0; i < dcf77.FrameBits; i++ {
		if bits.Get(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	fmt.Printf("%s\n%s\n", f, b.String())
	return nil
}
