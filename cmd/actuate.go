package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/smazurov/sdnbridge/internal/actuator"
	"github.com/smazurov/sdnbridge/internal/bridge"
	"github.com/smazurov/sdnbridge/internal/logging"
	"github.com/spf13/cobra"
)

// ManualAction is one actuation requested on the command line.
type ManualAction struct {
	Target bridge.Target
	Link   bridge.LinkID
	On     bool // up for links, on for congestion
}

// ParseManualAction accepts "link-a|link-b|a|b up|down" and
// "congestion on|off".
func ParseManualAction(target, state string) (ManualAction, error) {
	if target == "congestion" || target == "switch" {
		switch state {
		case "on":
			return ManualAction{Target: bridge.TargetSwitch, On: true}, nil
		case "off":
			return ManualAction{Target: bridge.TargetSwitch}, nil
		}
		return ManualAction{}, fmt.Errorf("congestion state must be on or off, got %q", state)
	}

	link, err := bridge.ParseLinkID(target)
	if err != nil {
		return ManualAction{}, err
	}
	a := ManualAction{Link: link, Target: bridge.TargetA}
	if link == bridge.LinkB {
		a.Target = bridge.TargetB
	}
	switch state {
	case "up":
		a.On = true
	case "down":
	default:
		return ManualAction{}, fmt.Errorf("link state must be up or down, got %q", state)
	}
	return a, nil
}

// Apply performs the action on act.
func (a ManualAction) Apply(ctx context.Context, act bridge.Actuator) error {
	switch {
	case a.Target == bridge.TargetSwitch && a.On:
		return act.CongestionOn(ctx)
	case a.Target == bridge.TargetSwitch:
		return act.CongestionOff(ctx)
	case a.On:
		return act.LinkUp(ctx, a.Link)
	default:
		return act.LinkDown(ctx, a.Link)
	}
}

// CreateActuateCmd creates the actuate command. cfg is called after the
// configuration has been loaded.
func CreateActuateCmd(cfg func() (actuator.Config, error)) *cobra.Command {
	var timeout time.Duration
	var backend string

	cmd := &cobra.Command{
		Use:   "actuate <link-a|link-b|congestion> <up|down|on|off>",
		Short: "Apply one network action through the configured backend",
		Long: `Runs a single link or congestion action without the panel, using the same ` +
			`backend and settings as the bridge. Useful to check sudo rules, OVS port names ` +
			`or ONOS flow permissions before wiring the hardware.`,
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			action, err := ParseManualAction(args[0], args[1])
			if err != nil {
				return err
			}
			actCfg, err := cfg()
			if err != nil {
				return err
			}
			if backend != "" {
				actCfg.Backend = backend
			}

			act, err := actuator.New(actCfg, nil, logging.GetLogger(logging.ModuleActuator))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()
			if err := action.Apply(ctx, act); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "%s %s: ok (%s)\n", args[0], args[1], act.Backend())
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	cmd.Flags().StringVar(&backend, "backend", "", "Override the configured backend (local, onos, dry-run)")
	return cmd
}
