package bridge

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoSelection is returned when the button is pressed before any device
// has been selected.
var ErrNoSelection = errors.New("no device selected")

// Policy decides how a dual-link toggle records a partial failure.
type Policy string

// Dual-link policies.
const (
	// PolicyBestEffort records the intended state for both links even if
	// one of the calls failed.
	PolicyBestEffort Policy = "best-effort"
	// PolicyStrict only moves a link's record when its own call succeeded.
	PolicyStrict Policy = "strict"
)

// ParsePolicy validates a policy name. Empty selects PolicyBestEffort.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyBestEffort:
		return PolicyBestEffort, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown dual policy %q (want %q or %q)", s, PolicyBestEffort, PolicyStrict)
	}
}

// Toggle flips the selected device through the actuator and returns the
// next state. On failure the returned state still reflects every change
// that was applied; the error is nil, ErrNoSelection, or one or more
// *ActuationError values.
func Toggle(ctx context.Context, s State, act Actuator, policy Policy) (State, error) {
	switch s.Target {
	case TargetNone:
		return s, ErrNoSelection
	case TargetA:
		return toggleLink(ctx, s, act, LinkA)
	case TargetB:
		return toggleLink(ctx, s, act, LinkB)
	case TargetSwitch:
		return toggleCongestion(ctx, s, act)
	case TargetBoth:
		return toggleBoth(ctx, s, act, policy)
	default:
		return s, fmt.Errorf("unknown target %v", s.Target)
	}
}

func toggleLink(ctx context.Context, s State, act Actuator, link LinkID) (State, error) {
	action, call := linkCall(act, !s.Connected[link])
	if err := call(ctx, link); err != nil {
		return s, &ActuationError{Target: targetForLink(link), Action: action, Err: err}
	}
	s.Connected[link] = !s.Connected[link]
	return s, nil
}

func toggleCongestion(ctx context.Context, s State, act Actuator) (State, error) {
	if !s.Congested {
		if err := act.CongestionOn(ctx); err != nil {
			return s, &ActuationError{Target: TargetSwitch, Action: ActionCongestionOn, Err: err}
		}
		s.Congested = true
		return s, nil
	}

	err := act.CongestionOff(ctx)
	s.Congested = false
	if err != nil {
		return s, &ActuationError{Target: TargetSwitch, Action: ActionCongestionOff, Err: err}
	}
	return s, nil
}

// toggleBoth takes both links down if either is up, otherwise brings both
// up. Each link is actuated independently of the other's result.
func toggleBoth(ctx context.Context, s State, act Actuator, policy Policy) (State, error) {
	want := s.AllDown()
	action, call := linkCall(act, want)

	var errs []error
	for _, link := range Links {
		err := call(ctx, link)
		if err != nil {
			errs = append(errs, &ActuationError{Target: targetForLink(link), Action: action, Err: err})
		}
		if err == nil || policy != PolicyStrict {
			s.Connected[link] = want
		}
	}
	return s, errors.Join(errs...)
}

func linkCall(act Actuator, up bool) (Action, func(context.Context, LinkID) error) {
	if up {
		return ActionLinkUp, act.LinkUp
	}
	return ActionLinkDown, act.LinkDown
}
