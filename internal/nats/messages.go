package nats

import (
	"encoding/json"

	"github.com/smazurov/sdnbridge/internal/events"
)

// Subjects for bridge telemetry.
const (
	SubjectPrefix      = "sdnbridge"
	SubjectState       = SubjectPrefix + ".state"
	SubjectTemperature = SubjectPrefix + ".temperature"
	SubjectActuations  = SubjectPrefix + ".actuations"
	SubjectAll         = SubjectPrefix + ".>"
)

// StateMessage is a bridge state snapshot.
type StateMessage struct {
	Timestamp string    `json:"timestamp"`
	Target    string    `json:"target"`
	LinkA     bool      `json:"link_a"`
	LinkB     bool      `json:"link_b"`
	Congested bool      `json:"congested"`
	LEDs      [3]string `json:"leds"` // LED1, LED2, LED3
	Reason    string    `json:"reason,omitempty"`
}

// Marshal serializes the message to JSON.
func (m StateMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// TemperatureMessage is a single temperature reading.
type TemperatureMessage struct {
	Timestamp string  `json:"timestamp"`
	Celsius   float64 `json:"celsius"`
	Level     string  `json:"level"`
}

// Marshal serializes the message to JSON.
func (m TemperatureMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// ActuationMessage is the result of one actuator call.
type ActuationMessage struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	Backend    string `json:"backend"`
	Action     string `json:"action"`
	Link       string `json:"link,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Marshal serializes the message to JSON.
func (m ActuationMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func stateFromEvent(e events.StateChangedEvent) StateMessage {
	return StateMessage{
		Timestamp: e.Timestamp,
		Target:    e.Target,
		LinkA:     e.LinkA,
		LinkB:     e.LinkB,
		Congested: e.Congested,
		LEDs:      [3]string{e.LEDA, e.LEDB, e.LEDSwitch},
		Reason:    e.Reason,
	}
}

func temperatureFromEvent(e events.TemperatureEvent) TemperatureMessage {
	return TemperatureMessage{Timestamp: e.Timestamp, Celsius: e.Celsius, Level: e.Level}
}

func actuationFromEvent(e events.ActuationEvent) ActuationMessage {
	return ActuationMessage{
		ID:         e.ID,
		Timestamp:  e.Timestamp,
		Backend:    e.Backend,
		Action:     e.Action,
		Link:       e.Link,
		Success:    e.Success,
		Error:      e.Error,
		DurationMs: e.DurationMs,
	}
}

// UnmarshalState deserializes a StateMessage from JSON.
func UnmarshalState(data []byte) (StateMessage, error) {
	var m StateMessage
	err := json.Unmarshal(data, &m)
	return m, err
}

// UnmarshalTemperature deserializes a TemperatureMessage from JSON.
func UnmarshalTemperature(data []byte) (TemperatureMessage, error) {
	var m TemperatureMessage
	err := json.Unmarshal(data, &m)
	return m, err
}

// UnmarshalActuation deserializes an ActuationMessage from JSON.
func UnmarshalActuation(data []byte) (ActuationMessage, error) {
	var m ActuationMessage
	err := json.Unmarshal(data, &m)
	return m, err
}
