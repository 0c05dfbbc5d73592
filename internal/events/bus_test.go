package events

import (
	"sync"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan StateChangedEvent, 1)

	unsub := bus.Subscribe(func(e StateChangedEvent) {
		received <- e
	})
	defer unsub()

	bus.Publish(StateChangedEvent{Target: "a", LinkA: false, LinkB: true, LEDA: "RED"})

	select {
	case got := <-received:
		if got.Target != "a" || got.LEDA != "RED" || got.LinkA {
			t.Errorf("unexpected event: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan TemperatureEvent, 1)

	unsub := bus.Subscribe(func(e TemperatureEvent) {
		received <- e
	})

	bus.Publish(TemperatureEvent{Celsius: 21})
	<-received

	unsub()

	bus.Publish(TemperatureEvent{Celsius: 22})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	stateReceived := make(chan bool, 1)
	actuationReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ StateChangedEvent) { stateReceived <- true })
	defer unsub1()
	unsub2 := bus.Subscribe(func(_ ActuationEvent) { actuationReceived <- true })
	defer unsub2()

	bus.Publish(ActuationEvent{Action: "link_down", Success: true})
	<-actuationReceived

	select {
	case <-stateReceived:
		t.Fatal("State subscriber should NOT have received ActuationEvent")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_ConcurrentPublishers(_ *testing.T) {
	bus := New()
	var wg sync.WaitGroup
	publishers := 10
	perPublisher := 100
	expected := publishers * perPublisher

	receivedCh := make(chan bool, expected)
	unsub := bus.Subscribe(func(_ PanelInputEvent) { receivedCh <- true })
	defer unsub()

	for range publishers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perPublisher {
				bus.Publish(PanelInputEvent{Line: "JOY_UP", Kind: "joy_up"})
			}
		}()
	}
	wg.Wait()

	for range expected {
		<-receivedCh
	}
}

func TestBus_UnknownHandlerType(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	if unsub == nil {
		t.Fatal("expected no-op unsubscribe for unknown handler type")
	}
	unsub()
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan any, 1)
	unsub := SubscribeToChannel[TemperatureEvent](bus, ch)
	defer unsub()

	bus.Publish(TemperatureEvent{Celsius: 31.5, Level: "high"})

	select {
	case ev := <-ch:
		te, ok := ev.(TemperatureEvent)
		if !ok || te.Level != "high" {
			t.Errorf("unexpected event: %#v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel event")
	}
}
