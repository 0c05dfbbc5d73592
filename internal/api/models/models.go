package models

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"1.0.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2025-01-27T10:30:00Z" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"42" doc:"Build identifier"`
	GoVersion string `json:"go_version" example:"go1.24.11" doc:"Go toolchain version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Go compiler"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Target platform"`
}

type VersionResponse struct {
	Body VersionData
}

// State models
type LinkData struct {
	ID        string `json:"id" example:"a" doc:"Link identifier"`
	Host      string `json:"host" example:"h1" doc:"Host attached to the link"`
	Connected bool   `json:"connected" example:"true" doc:"Whether the link passes traffic"`
	LED       string `json:"led" example:"GREEN" doc:"Panel LED color for the link"`
}

type SwitchData struct {
	Congested bool   `json:"congested" example:"false" doc:"Whether bandwidth throttling is active"`
	LED       string `json:"led" example:"GREEN" doc:"Panel LED color for the switch"`
}

type TemperatureData struct {
	Celsius   float64 `json:"celsius" example:"24.5" doc:"Last valid reading in degrees Celsius"`
	Level     string  `json:"level" example:"normal" doc:"normal or high"`
	Timestamp string  `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Reading timestamp"`
}

type StateData struct {
	Ready       bool             `json:"ready" example:"true" doc:"Whether the control loop has published its first snapshot"`
	Target      string           `json:"target" example:"switch" doc:"Selected target (none, a, b, switch, both)"`
	Links       []LinkData       `json:"links" doc:"Per-link state"`
	Switch      SwitchData       `json:"switch" doc:"Switch state"`
	Temperature *TemperatureData `json:"temperature,omitempty" doc:"Last valid temperature reading"`
	Reason      string           `json:"reason,omitempty" example:"toggle" doc:"Step that produced the snapshot"`
	UpdatedAt   string           `json:"updated_at,omitempty" example:"2025-01-27T10:30:00Z" doc:"Snapshot timestamp"`
}

type StateResponse struct {
	Body StateData
}

// Log models
type LogEntryData struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-27T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"bridge" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

type LogsData struct {
	Entries []LogEntryData `json:"entries" doc:"Log entries, oldest first"`
	Count   int            `json:"count" example:"10" doc:"Number of entries returned"`
}

type LogsRequest struct {
	Limit  int    `query:"limit" default:"100" minimum:"1" maximum:"1000" doc:"Maximum number of newest entries"`
	Module string `query:"module" example:"actuator" doc:"Only entries from this module"`
	Level  string `query:"level" example:"warn" doc:"Minimum level (debug, info, warn, error)"`
}

type LogsResponse struct {
	Body LogsData
}
