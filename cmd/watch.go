package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	bridgenats "github.com/smazurov/sdnbridge/internal/nats"
	"github.com/spf13/cobra"
)

// ErrNoNATSURL is returned by watch when no server is configured.
var ErrNoNATSURL = errors.New("no NATS server configured (set nats.url or --nats-server)")

// CreateWatchCmd creates the watch command. url returns the configured
// server address after configuration has been loaded.
func CreateWatchCmd(url func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print bridge telemetry published on NATS",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			server := url()
			if server == "" {
				return ErrNoNATSURL
			}

			nc, err := nats.Connect(server, nats.Name("sdnbridge-watch"), nats.Timeout(5*time.Second))
			if err != nil {
				return fmt.Errorf("failed to connect to %s: %w", server, err)
			}
			defer nc.Close()

			out := c.OutOrStdout()
			sub, err := nc.Subscribe(bridgenats.SubjectAll, func(m *nats.Msg) {
				fmt.Fprintln(out, FormatTelemetry(m.Subject, m.Data))
			})
			if err != nil {
				return fmt.Errorf("failed to subscribe: %w", err)
			}
			defer sub.Unsubscribe() //nolint:errcheck

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(out, "Watching %s on %s\n", bridgenats.SubjectAll, server)
			<-ctx.Done()
			return nil
		},
	}
}

// FormatTelemetry renders one telemetry message as a single line.
func FormatTelemetry(subject string, data []byte) string {
	line, err := formatTelemetry(subject, data)
	if err != nil {
		return fmt.Sprintf("%s: undecodable message: %v", subject, err)
	}
	return line
}

func formatTelemetry(subject string, data []byte) (string, error) {
	switch subject {
	case bridgenats.SubjectState:
		m, err := bridgenats.UnmarshalState(data)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s state target=%s a=%s b=%s congested=%t leds=%s reason=%s",
			stamp(m.Timestamp), m.Target, linkWord(m.LinkA), linkWord(m.LinkB), m.Congested,
			strings.Join(m.LEDs[:], ","), m.Reason), nil
	case bridgenats.SubjectTemperature:
		m, err := bridgenats.UnmarshalTemperature(data)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s temperature %.2f°C level=%s", stamp(m.Timestamp), m.Celsius, m.Level), nil
	case bridgenats.SubjectActuations:
		m, err := bridgenats.UnmarshalActuation(data)
		if err != nil {
			return "", err
		}
		result := "ok"
		if m.Error != "" {
			result = "error: " + m.Error
		}
		action := m.Action
		if m.Link != "" {
			action += " " + m.Link
		}
		return fmt.Sprintf("%s actuation %s via %s (%dms) %s",
			stamp(m.Timestamp), action, m.Backend, m.DurationMs, result), nil
	default:
		return fmt.Sprintf("%s %s", subject, data), nil
	}
}

func linkWord(connected bool) string {
	if connected {
		return "up"
	}
	return "down"
}

// stamp shortens an RFC 3339 timestamp to its local clock time.
func stamp(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("15:04:05")
}
