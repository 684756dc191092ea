// Package debugport — отладочный вывод часов: баннер, трасса приёма DCF77 и строка
// состояния. Выводится в последовательный порт (tarm/serial) либо в лог.
//
// Запись асинхронная: вызывающий только кладёт текст в очередь, переполненная
// очередь отбрасывает вывод, но не задерживает обработку фронтов и тиков.
package debugport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/shiwa/timecard-mini/dcfclock/internal/logger"
	"github.com/tarm/serial"
)

const queueSize = 256

// Port — отладочный вывод.
type Port struct {
	w       io.Writer
	closer  io.Closer
	queue   chan string
	dropped atomic.Uint32
	once    sync.Once
}

// Open открывает последовательный порт device; пустой device — вывод в лог.
func Open(device string, baud int) (*Port, error) {
	if device == "" {
		return New(&logWriter{}), nil
	}
	p, err := serial.OpenPort(&serial.Config{
		Name: device,
		Baud: baud,
	})
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", device, err)
	}
	port := New(crlf{p})
	port.closer = p
	return port, nil
}

// New создаёт Port поверх w.
func New(w io.Writer) *Port {
	return &Port{
		w:     w,
		queue: make(chan string, queueSize),
	}
}

// Printf ставит текст в очередь вывода без блокировки.
func (p *Port) Printf(format string, args ...interface{}) {
	p.put(fmt.Sprintf(format, args...))
}

// Println ставит в очередь строку с переводом строки.
func (p *Port) Println(s string) {
	p.put(s + "\n")
}

func (p *Port) put(s string) {
	select {
	case p.queue <- s:
	default:
		p.dropped.Add(1)
	}
}

// Dropped — сколько фрагментов отброшено из-за переполнения очереди.
func (p *Port) Dropped() uint32 {
	return p.dropped.Load()
}

// Run выводит очередь до отмены ctx.
func (p *Port) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-p.queue:
			if _, err := io.WriteString(p.w, s); err != nil {
				return fmt.Errorf("debugport: %w", err)
			}
		}
	}
}

// Close закрывает порт.
func (p *Port) Close() error {
	var err error
	p.once.Do(func() {
		if p.closer != nil {
			err = p.closer.Close()
		}
	})
	return err
}

// crlf заменяет \n на \r\n для терминала на другом конце линии.
type crlf struct {
	w io.Writer
}

func (c crlf) Write(b []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(b, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(b), nil
}

// logWriter собирает вывод в строки (до \r или \n) и пишет их в лог.
type logWriter struct {
	buf bytes.Buffer
}

func (l *logWriter) Write(b []byte) (int, error) {
	l.buf.Write(b)
	for {
		data := l.buf.Bytes()
		i := bytes.IndexAny(data, "\r\n")
		if i < 0 {
			return len(b), nil
		}
		if i > 0 {
			logger.Info("debug: %s", data[:i])
		}
		l.buf.Next(i + 1)
	}
}
