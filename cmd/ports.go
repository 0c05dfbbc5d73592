package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/smazurov/sdnbridge/internal/panel"
	"github.com/spf13/cobra"
)

// CreatePortsCmd creates the ports command.
func CreatePortsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List serial ports and the one auto-detection would pick",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			ports, err := panel.ListPorts()
			if err != nil {
				return err
			}
			detected, detectErr := panel.Detect()
			if detectErr != nil && !errors.Is(detectErr, panel.ErrNoPort) {
				return detectErr
			}
			if asJSON {
				return writePortsJSON(c.OutOrStdout(), ports, detected)
			}
			return writePortsTable(c.OutOrStdout(), ports, detected)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func writePortsJSON(w io.Writer, ports []panel.PortInfo, detected string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Ports    []panel.PortInfo `json:"ports"`
		Detected string           `json:"detected,omitempty"`
	}{ports, detected})
}

func writePortsTable(w io.Writer, ports []panel.PortInfo, detected string) error {
	if len(ports) == 0 {
		_, err := fmt.Fprintln(w, "No serial ports found. Is the panel plugged in?")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PORT\tVID:PID\tVENDOR\tPRODUCT\t")
	for _, p := range ports {
		id := "-"
		if p.USB {
			id = p.VID + ":" + p.PID
		}
		mark := ""
		if p.Name == detected {
			mark = "  <- panel"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.Name, id, dash(p.Vendor), dash(p.Product), mark)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
