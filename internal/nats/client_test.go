package nats

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/sdnbridge/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	mu        sync.Mutex
	msgs      []published
	connected bool
	err       error
	closed    bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, published{subject, data})
	return nil
}

func (c *fakeConn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.connected = false
}

func (c *fakeConn) messages() []published {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]published(nil), c.msgs...)
}

func newFakePublisher() (*Publisher, *fakeConn) {
	fc := &fakeConn{connected: true}
	p := NewPublisher("nats://test", testLogger())
	p.conn = fc
	return p, fc
}

func TestPublisherGracefulDegradation(t *testing.T) {
	p := NewPublisher("nats://127.0.0.1:59999", testLogger())

	if err := p.Connect(); err == nil {
		t.Fatal("Connect should fail with no server")
	}

	// No-ops without panicking.
	p.Publish(SubjectState, StateMessage{Target: "a"})
	p.Publish(SubjectTemperature, TemperatureMessage{Celsius: 20})

	if p.IsConnected() {
		t.Error("publisher should not be connected")
	}
	p.Close()
}

func TestPublisherSkipsWhileDisconnected(t *testing.T) {
	p, fc := newFakePublisher()
	fc.connected = false

	p.Publish(SubjectState, StateMessage{})
	if n := len(fc.messages()); n != 0 {
		t.Errorf("published %d messages while disconnected, want 0", n)
	}
}

func TestPublisherPublishError(t *testing.T) {
	p, fc := newFakePublisher()
	fc.err = errors.New("slow consumer")

	// Logged, not propagated.
	p.Publish(SubjectActuations, ActuationMessage{ID: "x"})

	p.Close()
	if !fc.closed {
		t.Error("Close should close the connection")
	}
	if p.IsConnected() {
		t.Error("publisher should report disconnected after Close")
	}
}

func waitForMessages(t *testing.T, fc *fakeConn, n int) []published {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		msgs := fc.messages()
		if len(msgs) >= n {
			return msgs
		}
		if time.Now().After(deadline) {
			t.Fatalf("got %d messages, want %d", len(msgs), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestForwarderPublishesBusEvents(t *testing.T) {
	p, fc := newFakePublisher()
	bus := events.New()

	f := NewForwarder(p, bus, testLogger())
	f.Start()
	defer f.Stop()

	bus.Publish(events.StateChangedEvent{
		Target: "a", LinkA: false, LinkB: true,
		LEDA: "RED", LEDB: "GREEN", LEDSwitch: "GREEN",
		Reason: "toggle", Timestamp: "2024-01-01T12:00:00Z",
	})
	bus.Publish(events.TemperatureEvent{Celsius: 31.2, Level: "high"})
	bus.Publish(events.ActuationEvent{ID: "id-1", Backend: "local", Action: "link_down", Link: "a", Success: true, DurationMs: 38})

	msgs := waitForMessages(t, fc, 3)

	bySubject := make(map[string][]byte)
	for _, m := range msgs {
		bySubject[m.subject] = m.data
	}

	state, err := UnmarshalState(bySubject[SubjectState])
	if err != nil {
		t.Fatalf("UnmarshalState: %v", err)
	}
	if state.Target != "a" || state.LinkA || !state.LinkB || state.LEDs != [3]string{"RED", "GREEN", "GREEN"} {
		t.Errorf("state = %+v", state)
	}

	temp, err := UnmarshalTemperature(bySubject[SubjectTemperature])
	if err != nil {
		t.Fatalf("UnmarshalTemperature: %v", err)
	}
	if temp.Celsius != 31.2 || temp.Level != "high" {
		t.Errorf("temperature = %+v", temp)
	}

	act, err := UnmarshalActuation(bySubject[SubjectActuations])
	if err != nil {
		t.Fatalf("UnmarshalActuation: %v", err)
	}
	if act.ID != "id-1" || act.Action != "link_down" || act.Link != "a" || !act.Success {
		t.Errorf("actuation = %+v", act)
	}
}

func TestForwarderStop(t *testing.T) {
	p, fc := newFakePublisher()
	bus := events.New()

	f := NewForwarder(p, bus, testLogger())
	f.Start()
	f.Stop()

	bus.Publish(events.TemperatureEvent{Celsius: 20})
	time.Sleep(50 * time.Millisecond)

	if n := len(fc.messages()); n != 0 {
		t.Errorf("published %d messages after Stop, want 0", n)
	}
}
