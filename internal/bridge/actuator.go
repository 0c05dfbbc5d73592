package bridge

import (
	"context"
	"fmt"
)

// Actuator applies network effects. A nil error means the effect was
// applied. Implementations bound their own latency.
type Actuator interface {
	LinkUp(ctx context.Context, link LinkID) error
	LinkDown(ctx context.Context, link LinkID) error
	CongestionOn(ctx context.Context) error
	// CongestionOff is best-effort: congestion is considered off once it
	// has been issued, whatever it returns.
	CongestionOff(ctx context.Context) error
}

// Action names an actuator operation.
type Action string

// Actuator operations.
const (
	ActionLinkUp        Action = "link_up"
	ActionLinkDown      Action = "link_down"
	ActionCongestionOn  Action = "congestion_on"
	ActionCongestionOff Action = "congestion_off"
)

// ActuationError reports a failed actuator call together with the device
// and direction that were attempted.
type ActuationError struct {
	Target Target
	Action Action
	Err    error
}

func (e *ActuationError) Error() string {
	return fmt.Sprintf("%s on %s failed: %v", e.Action, e.Target, e.Err)
}

func (e *ActuationError) Unwrap() error {
	return e.Err
}
