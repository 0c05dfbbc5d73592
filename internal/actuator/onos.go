package actuator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/smazurov/sdnbridge/internal/bridge"
	"github.com/smazurov/sdnbridge/internal/onos"
)

// ONOSConfig maps links to switch ports on the controller.
type ONOSConfig struct {
	DeviceID       string
	PortA          string
	PortB          string
	CongestionPort string
}

// WithDefaults returns cfg with empty fields filled in.
func (cfg ONOSConfig) WithDefaults() ONOSConfig {
	setDefault(&cfg.DeviceID, "of:0000000000000001")
	setDefault(&cfg.PortA, "1")
	setDefault(&cfg.PortB, "2")
	setDefault(&cfg.CongestionPort, "1")
	return cfg
}

// FlowClient is the part of the ONOS client used by the backend.
type FlowClient interface {
	AddFlow(ctx context.Context, f onos.Flow) (string, error)
	DeleteFlow(ctx context.Context, deviceID, flowID string) error
	FlowIDs(ctx context.Context, deviceID string, match func(onos.FlowEntry) bool) ([]string, error)
}

// ONOS actuates links with DROP flows and congestion with a flow that
// punts traffic to the controller.
type ONOS struct {
	cfg    ONOSConfig
	client FlowClient
	logger *slog.Logger

	mu        sync.Mutex
	installed map[string][]string // "<priority>/<port>" → flow ids
}

// NewONOS creates an ONOS backend.
func NewONOS(cfg ONOSConfig, client FlowClient, logger *slog.Logger) *ONOS {
	return &ONOS{
		cfg:       cfg.WithDefaults(),
		client:    client,
		logger:    logger,
		installed: make(map[string][]string),
	}
}

// LinkDown blocks traffic entering the link's switch port.
func (o *ONOS) LinkDown(ctx context.Context, link bridge.LinkID) error {
	return o.install(ctx, onos.DropFlow(o.cfg.DeviceID, o.port(link)))
}

// LinkUp removes the blocking flows for the link's switch port.
func (o *ONOS) LinkUp(ctx context.Context, link bridge.LinkID) error {
	return o.remove(ctx, onos.DropPriority, o.port(link))
}

// CongestionOn diverts the congested port through the controller.
func (o *ONOS) CongestionOn(ctx context.Context) error {
	return o.install(ctx, onos.ControllerFlow(o.cfg.DeviceID, o.cfg.CongestionPort))
}

// CongestionOff removes the diversion flow. Failures are logged only.
func (o *ONOS) CongestionOff(ctx context.Context) error {
	if err := o.remove(ctx, onos.ControllerPriority, o.cfg.CongestionPort); err != nil {
		o.logger.Warn("Failed to remove congestion flow, treating congestion as off", "error", err)
	}
	return nil
}

func (o *ONOS) port(link bridge.LinkID) string {
	if link == bridge.LinkB {
		return o.cfg.PortB
	}
	return o.cfg.PortA
}

func flowKey(priority int, port string) string {
	return fmt.Sprintf("%d/%s", priority, port)
}

func (o *ONOS) install(ctx context.Context, f onos.Flow) error {
	id, err := o.client.AddFlow(ctx, f)
	if err != nil {
		return err
	}
	o.mu.Lock()
	key := flowKey(f.Priority, f.InPort)
	o.installed[key] = append(o.installed[key], id)
	o.mu.Unlock()
	return nil
}

// remove deletes the flows this backend installed for port at priority.
// When none are known, for example after a restart, matching flows are
// looked up on the controller.
func (o *ONOS) remove(ctx context.Context, priority int, port string) error {
	key := flowKey(priority, port)
	o.mu.Lock()
	ids := o.installed[key]
	o.mu.Unlock()

	if len(ids) == 0 {
		found, err := o.client.FlowIDs(ctx, o.cfg.DeviceID, func(f onos.FlowEntry) bool {
			return f.Priority == priority && f.InPort == port
		})
		if err != nil {
			return err
		}
		ids = found
	}

	var errs []error
	var remaining []string
	for _, id := range ids {
		if err := o.client.DeleteFlow(ctx, o.cfg.DeviceID, id); err != nil {
			errs = append(errs, err)
			remaining = append(remaining, id)
		}
	}

	o.mu.Lock()
	if len(remaining) == 0 {
		delete(o.installed, key)
	} else {
		o.installed[key] = remaining
	}
	o.mu.Unlock()
	return errors.Join(errs...)
}
