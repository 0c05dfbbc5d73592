package bridge

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/smazurov/sdnbridge/internal/events"
	"github.com/smazurov/sdnbridge/internal/led"
)

var allGreenLines = led.AllGreen.Lines()

func newTestLoop(ch Channel, act Actuator, bus *events.Bus) *Loop {
	return NewLoop(ch, act, bus, testLogger(), Config{})
}

func TestHandleLineSelectionSendsFrame(t *testing.T) {
	ch := newFakeChannel()
	l := newTestLoop(ch, newRecordingActuator(), nil)

	l.handleLine(t.Context(), "JOY_UP")

	if l.State().Target != TargetSwitch {
		t.Errorf("Target = %v, want switch", l.State().Target)
	}
	if got := ch.Written(); !reflect.DeepEqual(got, allGreenLines) {
		t.Errorf("written = %v, want %v", got, allGreenLines)
	}
}

func TestHandleLineToggleSendsFrame(t *testing.T) {
	ch := newFakeChannel()
	act := newRecordingActuator()
	l := newTestLoop(ch, act, nil)

	l.handleLine(t.Context(), "JOY_LEFT")
	l.handleLine(t.Context(), "BUTTON")

	want := append(append([]string{}, allGreenLines...), "LED1:RED", "LED2:GREEN", "LED3:GREEN")
	if got := ch.Written(); !reflect.DeepEqual(got, want) {
		t.Errorf("written = %v, want %v", got, want)
	}
	if l.State().Connected[LinkA] {
		t.Error("expected link A down")
	}
}

func TestHandleLineToggleWithoutSelection(t *testing.T) {
	ch := newFakeChannel()
	act := newRecordingActuator()
	l := newTestLoop(ch, act, nil)

	l.handleLine(t.Context(), "BUTTON")

	if calls := act.Calls(); len(calls) != 0 {
		t.Errorf("actuator called: %v", calls)
	}
	if l.State() != NewState() {
		t.Errorf("state changed: %+v", l.State())
	}
	// Feedback is still re-sent on the no-op branch.
	if got := ch.Written(); !reflect.DeepEqual(got, allGreenLines) {
		t.Errorf("written = %v, want %v", got, allGreenLines)
	}
}

func TestHandleLineToggleFailureStillSendsFrame(t *testing.T) {
	ch := newFakeChannel()
	l := newTestLoop(ch, newRecordingActuator("down:b"), nil)

	l.handleLine(t.Context(), "JOY_RIGHT")
	l.handleLine(t.Context(), "BUTTON")

	if !l.State().Connected[LinkB] {
		t.Error("link B recorded down despite failure")
	}
	if got := len(ch.Written()); got != 6 {
		t.Errorf("written %d lines, want 6", got)
	}
}

func TestHandleLineNoFeedback(t *testing.T) {
	for _, line := range []string{"TEMP:abc", "FOO", "", "READY", "TEMP:22.0"} {
		t.Run(line, func(t *testing.T) {
			ch := newFakeChannel()
			l := newTestLoop(ch, newRecordingActuator(), nil)
			before := l.State()

			l.handleLine(t.Context(), line)

			if got := ch.Written(); len(got) != 0 {
				t.Errorf("written = %v, want nothing", got)
			}
			after := l.State()
			after.Temperature, after.HasTemperature = before.Temperature, before.HasTemperature
			if after != before {
				t.Errorf("state changed: %+v", l.State())
			}
		})
	}
}

func TestHandleLineMalformedTemperatureKeepsReading(t *testing.T) {
	l := newTestLoop(newFakeChannel(), newRecordingActuator(), nil)

	l.handleLine(t.Context(), "TEMP:21.5")
	l.handleLine(t.Context(), "TEMP:abc")

	s := l.State()
	if !s.HasTemperature || s.Temperature != 21.5 {
		t.Errorf("Temperature = %v, want 21.5", s.Temperature)
	}
}

func TestHandleLinePublishesEvents(t *testing.T) {
	bus := events.New()
	states := make(chan events.StateChangedEvent, 4)
	temps := make(chan events.TemperatureEvent, 4)
	inputs := make(chan events.PanelInputEvent, 4)
	defer bus.Subscribe(func(e events.StateChangedEvent) { states <- e })()
	defer bus.Subscribe(func(e events.TemperatureEvent) { temps <- e })()
	defer bus.Subscribe(func(e events.PanelInputEvent) { inputs <- e })()

	l := newTestLoop(newFakeChannel(), newRecordingActuator(), bus)
	l.handleLine(t.Context(), "JOY_UP")
	l.handleLine(t.Context(), "BUTTON")
	l.handleLine(t.Context(), "TEMP:35")

	select {
	case e := <-states:
		if e.Reason != "select" || e.Target != "switch" {
			t.Errorf("first state event = %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for state event")
	}
	select {
	case e := <-states:
		if e.Reason != "toggle" || !e.Congested || e.LEDSwitch != "BLUE" {
			t.Errorf("second state event = %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for state event")
	}
	select {
	case e := <-temps:
		if e.Celsius != 35 || e.Level != string(LevelHigh) {
			t.Errorf("temperature event = %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for temperature event")
	}
	select {
	case e := <-inputs:
		if e.Line != "JOY_UP" || e.Kind != "joy_up" {
			t.Errorf("input event = %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for input event")
	}
}

func TestRunProcessesLinesAndRestoresOnShutdown(t *testing.T) {
	ch := newFakeChannel("READY", "JOY_DOWN", "FOO", "BUTTON")
	act := newRecordingActuator()
	l := newTestLoop(ch, act, nil)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	// startup frame + selection frame + toggle frame
	waitForWrites(t, ch, 9)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	written := ch.Written()
	if len(written) != 12 {
		t.Fatalf("written %d lines, want 12: %v", len(written), written)
	}
	if !reflect.DeepEqual(written[:3], allGreenLines) {
		t.Errorf("startup frame = %v", written[:3])
	}
	if want := []string{"LED1:RED", "LED2:RED", "LED3:RED"}; !reflect.DeepEqual(written[6:9], want) {
		t.Errorf("toggle frame = %v, want %v", written[6:9], want)
	}
	if !reflect.DeepEqual(written[9:], allGreenLines) {
		t.Errorf("shutdown frame = %v", written[9:])
	}
	if want := []string{"down:a", "down:b"}; !reflect.DeepEqual(act.Calls(), want) {
		t.Errorf("calls = %v, want %v", act.Calls(), want)
	}
	if _, err := ch.ReadLine(); err == nil {
		t.Error("expected channel to be closed")
	}
}

func TestRunContinuesAfterWriteError(t *testing.T) {
	ch := newFakeChannel("JOY_LEFT", "BUTTON")
	ch.failOn = "LED2:GREEN"
	l := newTestLoop(ch, newRecordingActuator(), nil)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	// LED2 is dropped from each of the three frames
	waitForWrites(t, ch, 6)
	cancel()
	<-done

	if l.State().Connected[LinkA] {
		t.Error("expected link A down")
	}
}

func waitForWrites(t *testing.T, ch *fakeChannel, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(ch.Written()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %d writes, got %v", n, ch.Written())
}
