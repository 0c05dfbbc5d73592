package panel

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.bug.st/serial"
)

// Defaults matching the panel firmware.
const (
	DefaultBaudRate     = 9600
	DefaultSettleDelay  = 2 * time.Second
	DefaultReadyTimeout = 5 * time.Second
	readPollInterval    = 200 * time.Millisecond
)

var (
	// ErrTimeout is returned when no complete line arrives before a deadline.
	ErrTimeout = errors.New("timed out waiting for panel line")
	// ErrMalformedLine is returned for lines that are not valid UTF-8 text.
	ErrMalformedLine = errors.New("panel line is not valid text")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("panel port closed")
)

// Config describes how to open the panel's serial port.
type Config struct {
	Device       string        // empty selects the port automatically
	BaudRate     int           // defaults to 9600
	SettleDelay  time.Duration // wait after open for the board to reset
	ReadyTimeout time.Duration // how long to wait for READY, 0 skips the handshake
}

// Port is a line-oriented duplex connection to the panel.
type Port struct {
	name    string
	sp      serial.Port
	logger  *slog.Logger
	pending []byte
	buf     []byte

	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool
}

// Open opens the panel port, waits for the board to settle, and performs
// the optional READY handshake. A missing READY is logged, not fatal.
func Open(cfg Config, logger *slog.Logger) (*Port, error) {
	device := cfg.Device
	if device == "" {
		detected, err := Detect()
		if err != nil {
			return nil, err
		}
		device = detected
		logger.Info("Auto-detected panel port", "device", device)
	}

	baud := cfg.BaudRate
	if baud <= 0 {
		baud = DefaultBaudRate
	}

	sp, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open panel port %s: %w", device, err)
	}
	if err := sp.SetReadTimeout(readPollInterval); err != nil {
		_ = sp.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", device, err)
	}

	p := newPort(device, sp, logger)
	logger.Info("Panel port opened", "device", device, "baud", baud)

	if cfg.SettleDelay > 0 {
		time.Sleep(cfg.SettleDelay)
	}

	if cfg.ReadyTimeout > 0 {
		if err := p.WaitReady(cfg.ReadyTimeout); err != nil {
			logger.Warn("Panel did not report READY, continuing", "timeout", cfg.ReadyTimeout, "error", err)
		} else {
			logger.Info("Panel ready")
		}
	}
	return p, nil
}

func newPort(name string, sp serial.Port, logger *slog.Logger) *Port {
	return &Port{
		name:   name,
		sp:     sp,
		logger: logger,
		buf:    make([]byte, 128),
	}
}

// Name returns the device path.
func (p *Port) Name() string {
	return p.name
}

// WaitReady reads lines until READY arrives or the timeout elapses.
// Other lines received meanwhile are discarded.
func (p *Port) WaitReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		line, err := p.readLine(deadline)
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == TokenReady {
			return nil
		}
		p.logger.Debug("Discarding line before READY", "line", line)
	}
}

// ReadLine blocks until a full line arrives and returns it without the
// line terminator.
func (p *Port) ReadLine() (string, error) {
	return p.readLine(time.Time{})
}

func (p *Port) readLine(deadline time.Time) (string, error) {
	for {
		if i := bytes.IndexByte(p.pending, '\n'); i >= 0 {
			raw := p.pending[:i]
			p.pending = p.pending[i+1:]
			line := strings.TrimRight(string(raw), "\r")
			if !utf8.ValidString(line) {
				return "", fmt.Errorf("%w: %q", ErrMalformedLine, line)
			}
			return line, nil
		}

		if p.isClosed() {
			return "", ErrClosed
		}

		n, err := p.sp.Read(p.buf)
		if err != nil {
			if p.isClosed() {
				return "", ErrClosed
			}
			return "", fmt.Errorf("read from %s: %w", p.name, err)
		}
		if n == 0 {
			if !deadline.IsZero() && time.Now().After(deadline) {
				return "", ErrTimeout
			}
			continue
		}
		p.pending = append(p.pending, p.buf[:n]...)
	}
}

// WriteLine sends one command followed by a newline.
func (p *Port) WriteLine(line string) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if p.isClosed() {
		return ErrClosed
	}
	if _, err := p.sp.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("write to %s: %w", p.name, err)
	}
	return nil
}

// Close releases the serial port. It is safe to call more than once.
func (p *Port) Close() error {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return nil
	}
	p.closed = true
	p.closeMu.Unlock()

	p.logger.Info("Closing panel port", "device", p.name)
	return p.sp.Close()
}

func (p *Port) isClosed() bool {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	return p.closed
}
