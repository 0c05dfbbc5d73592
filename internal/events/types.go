package events

// Event type constants for kelindar/event.
const (
	TypePanelInput uint32 = iota + 1
	TypeStateChanged
	TypeTemperature
	TypeActuation
	TypeLogEntry
	TypePanelPresence
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// PanelInputEvent is published for every line received from the panel.
type PanelInputEvent struct {
	Line      string `json:"line" example:"JOY_UP" doc:"Raw line as received"`
	Kind      string `json:"kind" example:"joy_up" doc:"Decoded event kind"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Receive timestamp"`
}

// Type returns the event type identifier for PanelInputEvent.
func (e PanelInputEvent) Type() uint32 { return TypePanelInput }

// StateChangedEvent carries a full snapshot of the bridge state after a
// selection or toggle step, together with the LED frame that was sent.
type StateChangedEvent struct {
	Target    string `json:"target" example:"switch" doc:"Selected target"`
	LinkA     bool   `json:"link_a" example:"true" doc:"Whether link A passes traffic"`
	LinkB     bool   `json:"link_b" example:"true" doc:"Whether link B passes traffic"`
	Congested bool   `json:"congested" example:"false" doc:"Whether switch congestion is active"`
	LEDA      string `json:"led_a" example:"GREEN" doc:"Link A LED color"`
	LEDB      string `json:"led_b" example:"GREEN" doc:"Link B LED color"`
	LEDSwitch string `json:"led_switch" example:"GREEN" doc:"Switch LED color"`
	Reason    string `json:"reason" example:"select" doc:"Step that produced this snapshot"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Snapshot timestamp"`
}

// Type returns the event type identifier for StateChangedEvent.
func (e StateChangedEvent) Type() uint32 { return TypeStateChanged }

// TemperatureEvent is published for every valid temperature reading.
type TemperatureEvent struct {
	Celsius   float64 `json:"celsius" example:"24.5" doc:"Reading in degrees Celsius"`
	Level     string  `json:"level" example:"normal" doc:"normal or high"`
	Timestamp string  `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Reading timestamp"`
}

// Type returns the event type identifier for TemperatureEvent.
func (e TemperatureEvent) Type() uint32 { return TypeTemperature }

// ActuationEvent records one call into the network actuator.
type ActuationEvent struct {
	ID         string `json:"id" example:"0b8c..." doc:"Correlation id"`
	Backend    string `json:"backend" example:"local" doc:"Actuator backend"`
	Action     string `json:"action" example:"link_down" doc:"Action attempted"`
	Link       string `json:"link,omitempty" example:"a" doc:"Link, for link actions"`
	Success    bool   `json:"success" example:"true" doc:"Whether the actuation succeeded"`
	Error      string `json:"error,omitempty" doc:"Failure detail"`
	DurationMs int64  `json:"duration_ms" example:"42" doc:"Call duration"`
	Timestamp  string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Completion timestamp"`
}

// Type returns the event type identifier for ActuationEvent.
func (e ActuationEvent) Type() uint32 { return TypeActuation }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"bridge" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }

// PanelPresenceEvent is published when the panel's serial device is
// unplugged or plugged back in.
type PanelPresenceEvent struct {
	Device    string `json:"device" example:"/dev/ttyACM0" doc:"Serial device node"`
	Connected bool   `json:"connected" example:"false" doc:"Whether the device node exists"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PanelPresenceEvent.
func (e PanelPresenceEvent) Type() uint32 { return TypePanelPresence }
