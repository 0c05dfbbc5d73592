package nats

import (
	"log/slog"
	"sync"

	"github.com/smazurov/sdnbridge/internal/events"
)

// Forwarder republishes event bus telemetry on NATS subjects.
type Forwarder struct {
	publisher *Publisher
	eventBus  *events.Bus
	logger    *slog.Logger

	mu   sync.Mutex
	subs []func()
}

// NewForwarder creates a forwarder from bus to publisher.
func NewForwarder(publisher *Publisher, eventBus *events.Bus, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{
		publisher: publisher,
		eventBus:  eventBus,
		logger:    logger.With("component", "nats-forwarder"),
	}
}

// Start subscribes to the bus.
func (f *Forwarder) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.subs = append(f.subs,
		f.eventBus.Subscribe(func(e events.StateChangedEvent) {
			f.publisher.Publish(SubjectState, stateFromEvent(e))
		}),
		f.eventBus.Subscribe(func(e events.TemperatureEvent) {
			f.publisher.Publish(SubjectTemperature, temperatureFromEvent(e))
		}),
		f.eventBus.Subscribe(func(e events.ActuationEvent) {
			f.publisher.Publish(SubjectActuations, actuationFromEvent(e))
		}),
	)
	f.logger.Info("NATS telemetry forwarding started")
}

// Stop unsubscribes from the bus. The publisher is left open.
func (f *Forwarder) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, unsub := range f.subs {
		unsub()
	}
	f.subs = nil
	f.logger.Info("NATS telemetry forwarding stopped")
}
