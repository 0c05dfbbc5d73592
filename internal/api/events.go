package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/sdnbridge/internal/events"
)

// registerSSERoutes registers the bridge event stream.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time panel input, state snapshots, temperature readings, actuation results and panel presence",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"panel-input":    events.PanelInputEvent{},
		"state-changed":  events.StateChangedEvent{},
		"temperature":    events.TemperatureEvent{},
		"actuation":      events.ActuationEvent{},
		"panel-presence": events.PanelPresenceEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 32)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.PanelInputEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.StateChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.TemperatureEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.ActuationEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.PanelPresenceEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Current snapshot first so clients render without waiting.
		if snap := s.state.latest(); snap != nil {
			if err := send.Data(*snap); err != nil {
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
