package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/smazurov/sdnbridge/internal/panel"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingActuator records calls and fails those listed in fail.
type recordingActuator struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func newRecordingActuator(fail ...string) *recordingActuator {
	a := &recordingActuator{fail: make(map[string]bool)}
	for _, f := range fail {
		a.fail[f] = true
	}
	return a
}

func (a *recordingActuator) record(call string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, call)
	if a.fail[call] {
		return fmt.Errorf("%s: %w", call, errInjected)
	}
	return nil
}

var errInjected = errors.New("injected failure")

func (a *recordingActuator) LinkUp(_ context.Context, l LinkID) error {
	return a.record("up:" + l.String())
}

func (a *recordingActuator) LinkDown(_ context.Context, l LinkID) error {
	return a.record("down:" + l.String())
}

func (a *recordingActuator) CongestionOn(context.Context) error {
	return a.record("congestion:on")
}

func (a *recordingActuator) CongestionOff(context.Context) error {
	return a.record("congestion:off")
}

func (a *recordingActuator) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

// fakeChannel serves scripted lines, then blocks until closed.
type fakeChannel struct {
	mu      sync.Mutex
	lines   chan string
	closed  chan struct{}
	once    sync.Once
	written []string
	failOn  string
}

func newFakeChannel(lines ...string) *fakeChannel {
	c := &fakeChannel{
		lines:  make(chan string, len(lines)),
		closed: make(chan struct{}),
	}
	for _, l := range lines {
		c.lines <- l
	}
	return c
}

func (c *fakeChannel) ReadLine() (string, error) {
	select {
	case <-c.closed:
		return "", panel.ErrClosed
	default:
	}
	select {
	case l := <-c.lines:
		return l, nil
	case <-c.closed:
		return "", panel.ErrClosed
	}
}

func (c *fakeChannel) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if line == c.failOn {
		return errors.New("write failed")
	}
	c.written = append(c.written, line)
	return nil
}

func (c *fakeChannel) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeChannel) Written() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.written...)
}
