package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/sdnbridge/internal/led"
)

// LEDCapabilitiesResponse lists host LED names known to the controller.
type LEDCapabilitiesResponse struct {
	Body struct {
		AvailableTypes []string `json:"available_types" doc:"Host LED names on this board"`
		StatusLED      string   `json:"status_led" example:"status" doc:"LED that mirrors the switch state"`
	}
}

// registerLEDRoutes exposes host LED capabilities when a controller is
// configured.
func (s *Server) registerLEDRoutes() {
	if s.options.LEDController == nil {
		s.logger.Debug("Host LED controller not available, skipping LED routes")
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "get-led-capabilities",
		Method:      http.MethodGet,
		Path:        "/api/leds/capabilities",
		Summary:     "Get LED Capabilities",
		Description: "List the host LEDs available on this board",
		Tags:        []string{"leds"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*LEDCapabilitiesResponse, error) {
		resp := &LEDCapabilitiesResponse{}
		resp.Body.AvailableTypes = s.options.LEDController.Available()
		resp.Body.StatusLED = led.StatusLED
		return resp, nil
	})
}
