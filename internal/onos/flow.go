package onos

import (
	"fmt"

	"github.com/tidwall/sjson"
)

// Flow priorities used by the bridge.
const (
	DropPriority       = 40000
	ControllerPriority = 30000
)

// Flow is a permanent single-criterion flow rule: match IN_PORT, apply one
// instruction.
type Flow struct {
	DeviceID    string
	Priority    int
	InPort      string
	Instruction string // DROP or OUTPUT
	OutPort     string // OUTPUT only
}

// DropFlow blocks all traffic entering port.
func DropFlow(deviceID, port string) Flow {
	return Flow{DeviceID: deviceID, Priority: DropPriority, InPort: port, Instruction: "DROP"}
}

// ControllerFlow diverts traffic entering port through the controller,
// which throttles it.
func ControllerFlow(deviceID, port string) Flow {
	return Flow{DeviceID: deviceID, Priority: ControllerPriority, InPort: port, Instruction: "OUTPUT", OutPort: "CONTROLLER"}
}

// JSON renders the flow in the ONOS REST format.
func (f Flow) JSON() ([]byte, error) {
	instruction := map[string]string{"type": f.Instruction}
	if f.OutPort != "" {
		instruction["port"] = f.OutPort
	}

	doc := []byte(`{}`)
	fields := []struct {
		path  string
		value any
	}{
		{"priority", f.Priority},
		{"timeout", 0},
		{"isPermanent", true},
		{"deviceId", f.DeviceID},
		{"treatment.instructions", []map[string]string{instruction}},
		{"selector.criteria", []map[string]string{{"type": "IN_PORT", "port": f.InPort}}},
	}

	var err error
	for _, field := range fields {
		if doc, err = sjson.SetBytes(doc, field.path, field.value); err != nil {
			return nil, fmt.Errorf("failed to encode flow %s: %w", field.path, err)
		}
	}
	return doc, nil
}
