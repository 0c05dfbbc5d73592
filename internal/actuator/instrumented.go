package actuator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/smazurov/sdnbridge/internal/bridge"
	"github.com/smazurov/sdnbridge/internal/events"
	"github.com/smazurov/sdnbridge/internal/metrics"
)

// Instrumented wraps a backend with metrics, correlation ids and
// ActuationEvents.
type Instrumented struct {
	next    bridge.Actuator
	backend string
	bus     *events.Bus
	logger  *slog.Logger
}

// NewInstrumented wraps next. bus may be nil.
func NewInstrumented(next bridge.Actuator, backend string, bus *events.Bus, logger *slog.Logger) *Instrumented {
	return &Instrumented{next: next, backend: backend, bus: bus, logger: logger}
}

// Backend returns the wrapped backend's name.
func (i *Instrumented) Backend() string {
	return i.backend
}

func (i *Instrumented) LinkUp(ctx context.Context, link bridge.LinkID) error {
	return i.observe(ctx, bridge.ActionLinkUp, link.String(), func(ctx context.Context) error {
		return i.next.LinkUp(ctx, link)
	})
}

func (i *Instrumented) LinkDown(ctx context.Context, link bridge.LinkID) error {
	return i.observe(ctx, bridge.ActionLinkDown, link.String(), func(ctx context.Context) error {
		return i.next.LinkDown(ctx, link)
	})
}

func (i *Instrumented) CongestionOn(ctx context.Context) error {
	return i.observe(ctx, bridge.ActionCongestionOn, "", i.next.CongestionOn)
}

func (i *Instrumented) CongestionOff(ctx context.Context) error {
	return i.observe(ctx, bridge.ActionCongestionOff, "", i.next.CongestionOff)
}

func (i *Instrumented) observe(ctx context.Context, action bridge.Action, link string, call func(context.Context) error) error {
	id := uuid.NewString()
	logger := i.logger.With("actuation_id", id, "backend", i.backend, "action", action)
	if link != "" {
		logger = logger.With("link", link)
	}

	logger.Debug("Actuation started")
	start := time.Now()
	err := call(ctx)
	elapsed := time.Since(start)

	metrics.RecordActuation(string(action), err, elapsed)
	if err != nil {
		logger.Error("Actuation failed", "error", err, "duration", elapsed)
	} else {
		logger.Info("Actuation succeeded", "duration", elapsed)
	}

	if i.bus != nil {
		ev := events.ActuationEvent{
			ID:         id,
			Backend:    i.backend,
			Action:     string(action),
			Link:       link,
			Success:    err == nil,
			DurationMs: elapsed.Milliseconds(),
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		}
		if err != nil {
			ev.Error = err.Error()
		}
		i.bus.Publish(ev)
	}
	return err
}
