package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/smazurov/sdnbridge/internal/logging"
	"github.com/smazurov/sdnbridge/internal/onos"
	"github.com/spf13/cobra"
)

// ProbeTarget names what the probe expects to find on the controller.
type ProbeTarget struct {
	DeviceID     string
	RequiredApps []string
}

// ProbeReport is the outcome of one probe run.
type ProbeReport struct {
	BaseURL      string
	Devices      []onos.Device
	Hosts        []onos.Host
	Links        []onos.Link
	MissingApps  []string
	DeviceFound  bool
	DeviceWanted string
}

// ErrProbeFailed is returned when the controller answers but is not usable
// by the bridge.
var ErrProbeFailed = errors.New("controller check failed")

// CreateProbeCmd creates the probe command.
func CreateProbeCmd(cfg func() (onos.Config, ProbeTarget, error)) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check ONOS connectivity, required applications and topology",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			onosCfg, target, err := cfg()
			if err != nil {
				return err
			}
			client := onos.NewClient(onosCfg, logging.GetLogger(logging.ModuleONOS))

			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()

			report, err := Probe(ctx, client, target)
			if err != nil {
				return err
			}
			writeProbeReport(c.OutOrStdout(), report)
			if len(report.MissingApps) > 0 || !report.DeviceFound {
				return ErrProbeFailed
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 20*time.Second, "Overall timeout")
	return cmd
}

// Probe queries the controller and compares it against target.
func Probe(ctx context.Context, client *onos.Client, target ProbeTarget) (ProbeReport, error) {
	report := ProbeReport{BaseURL: client.BaseURL(), DeviceWanted: target.DeviceID}

	if err := client.Ping(ctx); err != nil {
		return report, fmt.Errorf("controller unreachable at %s: %w", client.BaseURL(), err)
	}

	active, err := client.ActiveApplications(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list applications: %w", err)
	}
	report.MissingApps = missingApps(active, target.RequiredApps)

	if report.Devices, err = client.Devices(ctx); err != nil {
		return report, fmt.Errorf("failed to list devices: %w", err)
	}
	if report.Hosts, err = client.Hosts(ctx); err != nil {
		return report, fmt.Errorf("failed to list hosts: %w", err)
	}
	if report.Links, err = client.Links(ctx); err != nil {
		return report, fmt.Errorf("failed to list links: %w", err)
	}

	report.DeviceFound = target.DeviceID == "" || slices.ContainsFunc(report.Devices, func(d onos.Device) bool {
		return d.ID == target.DeviceID
	})
	return report, nil
}

func missingApps(active map[string]bool, required []string) []string {
	var missing []string
	for _, app := range required {
		if !active[app] {
			missing = append(missing, app)
		}
	}
	return missing
}

func writeProbeReport(w io.Writer, r ProbeReport) {
	fmt.Fprintf(w, "Controller: %s\n", r.BaseURL)
	if len(r.MissingApps) == 0 {
		fmt.Fprintln(w, "Applications: ok")
	} else {
		fmt.Fprintf(w, "Applications: missing %v\n", r.MissingApps)
	}

	fmt.Fprintf(w, "Devices: %d\n", len(r.Devices))
	for _, d := range r.Devices {
		state := "available"
		if !d.Available {
			state = "unavailable"
		}
		fmt.Fprintf(w, "  %s (%s, %s)\n", d.ID, d.Type, state)
	}
	if r.DeviceWanted != "" && !r.DeviceFound {
		fmt.Fprintf(w, "  configured device %s not found\n", r.DeviceWanted)
	}

	fmt.Fprintf(w, "Hosts: %d\n", len(r.Hosts))
	for _, h := range r.Hosts {
		at := ""
		if len(h.Locations) > 0 {
			at = fmt.Sprintf(" at %s/%s", h.Locations[0].ElementID, h.Locations[0].Port)
		}
		fmt.Fprintf(w, "  %s %v%s\n", h.ID, h.IPAddresses, at)
	}
	fmt.Fprintf(w, "Links: %d\n", len(r.Links))
}
