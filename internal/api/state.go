package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/sdnbridge/internal/api/models"
	"github.com/smazurov/sdnbridge/internal/events"
)

// stateCache keeps the latest snapshot published by the control loop.
type stateCache struct {
	mu          sync.RWMutex
	snapshot    events.StateChangedEvent
	ready       bool
	temperature *events.TemperatureEvent
	unsubscribe []func()
}

func newStateCache(bus *events.Bus) *stateCache {
	c := &stateCache{}
	c.unsubscribe = []func(){
		bus.Subscribe(func(e events.StateChangedEvent) {
			c.mu.Lock()
			c.snapshot = e
			c.ready = true
			c.mu.Unlock()
		}),
		bus.Subscribe(func(e events.TemperatureEvent) {
			c.mu.Lock()
			c.temperature = &e
			c.mu.Unlock()
		}),
	}
	return c
}

func (c *stateCache) close() {
	for _, unsub := range c.unsubscribe {
		unsub()
	}
}

// latest returns the last snapshot, or nil before the first one.
func (c *stateCache) latest() *events.StateChangedEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ready {
		return nil
	}
	snap := c.snapshot
	return &snap
}

func (c *stateCache) data() models.StateData {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.snapshot
	data := models.StateData{
		Ready:  c.ready,
		Target: s.Target,
		Links: []models.LinkData{
			{ID: "a", Host: "h1", Connected: s.LinkA, LED: s.LEDA},
			{ID: "b", Host: "h2", Connected: s.LinkB, LED: s.LEDB},
		},
		Switch:    models.SwitchData{Congested: s.Congested, LED: s.LEDSwitch},
		Reason:    s.Reason,
		UpdatedAt: s.Timestamp,
	}
	if c.temperature != nil {
		data.Temperature = &models.TemperatureData{
			Celsius:   c.temperature.Celsius,
			Level:     c.temperature.Level,
			Timestamp: c.temperature.Timestamp,
		}
	}
	return data
}

func (s *Server) registerStateRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-state",
		Method:      http.MethodGet,
		Path:        "/api/state",
		Summary:     "Bridge State",
		Description: "Current selection, link and switch state, LED frame and last temperature reading",
		Tags:        []string{"state"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(ctx context.Context, _ *struct{}) (*models.StateResponse, error) {
		return &models.StateResponse{Body: s.state.data()}, nil
	})
}
