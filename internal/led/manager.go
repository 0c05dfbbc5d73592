package led

import (
	"log/slog"
	"sync"

	"github.com/smazurov/sdnbridge/internal/events"
)

// Manager mirrors the panel's switch LED onto the host status LED so the
// bridge machine itself shows whether the network is healthy.
type Manager struct {
	controller  Controller
	eventBus    *events.Bus
	unsubscribe func()
	logger      *slog.Logger

	mu          sync.Mutex
	lastPattern string
}

// NewManager creates a manager that reacts to bridge state snapshots.
func NewManager(controller Controller, eventBus *events.Bus, logger *slog.Logger) *Manager {
	return &Manager{
		controller: controller,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Start subscribes to state changes.
func (m *Manager) Start() {
	m.unsubscribe = m.eventBus.Subscribe(func(e events.StateChangedEvent) {
		m.handleState(e)
	})
	m.logger.Info("Host LED manager started")
}

// Stop unsubscribes from state changes.
func (m *Manager) Stop() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.logger.Info("Host LED manager stopped")
}

// PatternFor maps the switch LED color to a host LED pattern.
func PatternFor(c Color) string {
	switch c {
	case Blue:
		return "heartbeat"
	case Red:
		return "blink"
	default:
		return "solid"
	}
}

func (m *Manager) handleState(e events.StateChangedEvent) {
	pattern := PatternFor(Color(e.LEDSwitch))

	m.mu.Lock()
	defer m.mu.Unlock()
	if pattern == m.lastPattern {
		return
	}

	if err := m.controller.Set(StatusLED, true, pattern); err != nil {
		m.logger.Warn("Failed to set host LED", "pattern", pattern, "error", err)
		return
	}
	m.lastPattern = pattern
	m.logger.Debug("Host LED updated", "pattern", pattern, "switch", e.LEDSwitch)
}

// GetController returns the underlying controller.
func (m *Manager) GetController() Controller {
	return m.controller
}
