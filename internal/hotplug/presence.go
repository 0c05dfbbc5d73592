package hotplug

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/smazurov/sdnbridge/internal/events"
	"github.com/smazurov/sdnbridge/internal/metrics"
)

// Presence tracks whether the panel's device node exists and reports
// changes on the bus.
type Presence struct {
	device    string // resolved /dev node
	eventBus  *events.Bus
	logger    *slog.Logger
	connected bool
}

// NewPresence watches device. Symlinks such as /dev/serial/by-id/... are
// resolved once, so the kernel name can be matched after removal.
func NewPresence(device string, eventBus *events.Bus, logger *slog.Logger) *Presence {
	if resolved, err := filepath.EvalSymlinks(device); err == nil {
		device = resolved
	}
	metrics.SetPanelConnected(true)
	return &Presence{device: device, eventBus: eventBus, logger: logger, connected: true}
}

// Device returns the watched device node.
func (p *Presence) Device() string {
	return p.device
}

// Connected reports the last known presence.
func (p *Presence) Connected() bool {
	return p.connected
}

// Watch consumes tty uevents until ctx is cancelled. It returns
// ErrUnsupported where uevents are unavailable.
func (p *Presence) Watch(ctx context.Context) error {
	mon, err := NewMonitor(SubsystemTTY)
	if err != nil {
		return err
	}
	defer mon.Close()

	ch := make(chan Event, 16)
	errCh := make(chan error, 1)
	go func() { errCh <- mon.Run(ctx, ch) }()

	for ev := range ch {
		p.Handle(ev)
	}
	if err := <-errCh; err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// Handle applies one uevent. Events for other devices are ignored.
func (p *Presence) Handle(ev Event) {
	if ev.DevNode() != p.device {
		return
	}

	switch ev.Action {
	case ActionRemove:
		if !p.connected {
			return
		}
		p.connected = false
		p.logger.Warn("Panel disconnected", "device", p.device)
	case ActionAdd:
		if p.connected {
			return
		}
		p.connected = true
		p.logger.Warn("Panel plugged back in; restart the bridge to reattach", "device", p.device)
	default:
		return
	}

	metrics.SetPanelConnected(p.connected)
	if p.eventBus != nil {
		p.eventBus.Publish(events.PanelPresenceEvent{
			Device:    p.device,
			Connected: p.connected,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}
