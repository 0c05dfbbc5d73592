package actuator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/smazurov/sdnbridge/internal/bridge"
	"github.com/smazurov/sdnbridge/internal/process"
)

// Command templates. Placeholders are replaced before the command is split
// with shell quoting rules.
const (
	DefaultLinkCommand            = "ovs-ofctl -O OpenFlow13 mod-port {switch} {port} {state}"
	DefaultCongestionOnCommand    = "tc qdisc add dev {iface} root tbf rate {rate} burst {burst} latency {latency}"
	DefaultCongestionClearCommand = "tc qdisc del dev {iface} root"
)

// LocalConfig configures the local backend. Zero fields take the defaults
// of a single-switch two-host Mininet topology.
type LocalConfig struct {
	Sudo           bool
	Switch         string
	PortA          string
	PortB          string
	Interface      string // interface shaped when congestion is on
	Rate           string
	Burst          string
	Latency        string
	CommandTimeout time.Duration

	LinkCommand            string
	CongestionOnCommand    string
	CongestionClearCommand string
}

// WithDefaults returns cfg with empty fields filled in.
func (cfg LocalConfig) WithDefaults() LocalConfig {
	setDefault(&cfg.Switch, "s1")
	setDefault(&cfg.PortA, "s1-eth1")
	setDefault(&cfg.PortB, "s1-eth2")
	setDefault(&cfg.Interface, "s1-eth1")
	setDefault(&cfg.Rate, "1mbit")
	setDefault(&cfg.Burst, "32kbit")
	setDefault(&cfg.Latency, "400ms")
	setDefault(&cfg.LinkCommand, DefaultLinkCommand)
	setDefault(&cfg.CongestionOnCommand, DefaultCongestionOnCommand)
	setDefault(&cfg.CongestionClearCommand, DefaultCongestionClearCommand)
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 5 * time.Second
	}
	return cfg
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Local drives Open vSwitch and tc on the host running the switch.
type Local struct {
	cfg    LocalConfig
	runner process.Runner
	logger *slog.Logger
}

// NewLocal creates a local backend running commands through runner.
func NewLocal(cfg LocalConfig, runner process.Runner, logger *slog.Logger) *Local {
	return &Local{cfg: cfg.WithDefaults(), runner: runner, logger: logger}
}

// LinkUp brings the switch port of link up.
func (l *Local) LinkUp(ctx context.Context, link bridge.LinkID) error {
	return l.run(ctx, l.cfg.LinkCommand, "{port}", l.port(link), "{state}", "up")
}

// LinkDown takes the switch port of link down.
func (l *Local) LinkDown(ctx context.Context, link bridge.LinkID) error {
	return l.run(ctx, l.cfg.LinkCommand, "{port}", l.port(link), "{state}", "down")
}

// CongestionOn replaces any root qdisc with a token bucket filter.
func (l *Local) CongestionOn(ctx context.Context) error {
	// A missing qdisc makes the delete fail; that is expected.
	if err := l.run(ctx, l.cfg.CongestionClearCommand); err != nil {
		l.logger.Debug("No qdisc to clear before shaping", "error", err)
	}
	return l.run(ctx, l.cfg.CongestionOnCommand)
}

// CongestionOff removes the root qdisc. Failure means nothing was shaped.
func (l *Local) CongestionOff(ctx context.Context) error {
	if err := l.run(ctx, l.cfg.CongestionClearCommand); err != nil {
		l.logger.Debug("Clearing qdisc failed, treating congestion as off", "error", err)
	}
	return nil
}

func (l *Local) port(link bridge.LinkID) string {
	if link == bridge.LinkB {
		return l.cfg.PortB
	}
	return l.cfg.PortA
}

// command expands a template. extra holds additional placeholder/value
// pairs.
func (l *Local) command(template string, extra ...string) string {
	pairs := append([]string{
		"{switch}", l.cfg.Switch,
		"{iface}", l.cfg.Interface,
		"{rate}", l.cfg.Rate,
		"{burst}", l.cfg.Burst,
		"{latency}", l.cfg.Latency,
	}, extra...)
	cmd := strings.NewReplacer(pairs...).Replace(template)
	if l.cfg.Sudo {
		cmd = "sudo -n " + cmd
	}
	return cmd
}

func (l *Local) run(ctx context.Context, template string, extra ...string) error {
	cmd := l.command(template, extra...)
	ctx, cancel := context.WithTimeout(ctx, l.cfg.CommandTimeout)
	defer cancel()

	res, err := l.runner.Run(ctx, cmd)
	if err != nil {
		return err
	}
	l.logger.Debug("Command succeeded", "command", cmd, "duration", res.Duration)
	return nil
}
