package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smazurov/sdnbridge/internal/actuator"
	"github.com/smazurov/sdnbridge/internal/bridge"
	"github.com/smazurov/sdnbridge/internal/logging"
	"github.com/smazurov/sdnbridge/internal/onos"
	"github.com/smazurov/sdnbridge/internal/panel"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Panel serial line
	SerialPort         string `help:"Panel serial device, empty to auto-detect" default:"" toml:"serial.port" env:"SERIAL_PORT"`
	SerialBaud         int    `help:"Panel baud rate" default:"9600" toml:"serial.baud" env:"SERIAL_BAUD"`
	SerialSettle       string `help:"Delay after opening the port while the board resets" default:"2s" toml:"serial.settle" env:"SERIAL_SETTLE"`
	SerialReadyTimeout string `help:"How long to wait for READY, 0 to skip the handshake" default:"5s" toml:"serial.ready_timeout" env:"SERIAL_READY_TIMEOUT"`

	// Actuator settings
	ActuatorBackend                string `help:"Actuator backend (local, onos, dry-run)" default:"local" toml:"actuator.backend" env:"ACTUATOR_BACKEND"`
	ActuatorSudo                   bool   `help:"Prefix local commands with sudo -n" default:"false" toml:"actuator.sudo" env:"ACTUATOR_SUDO"`
	ActuatorSwitch                 string `help:"OVS bridge name" default:"s1" toml:"actuator.switch" env:"ACTUATOR_SWITCH"`
	ActuatorPortA                  string `help:"Switch port of host h1" default:"s1-eth1" toml:"actuator.port_a" env:"ACTUATOR_PORT_A"`
	ActuatorPortB                  string `help:"Switch port of host h2" default:"s1-eth2" toml:"actuator.port_b" env:"ACTUATOR_PORT_B"`
	ActuatorInterface              string `help:"Interface throttled while congested" default:"s1-eth1" toml:"actuator.interface" env:"ACTUATOR_INTERFACE"`
	ActuatorRate                   string `help:"tbf rate while congested" default:"1mbit" toml:"actuator.rate" env:"ACTUATOR_RATE"`
	ActuatorBurst                  string `help:"tbf burst while congested" default:"32kbit" toml:"actuator.burst" env:"ACTUATOR_BURST"`
	ActuatorLatency                string `help:"tbf latency while congested" default:"400ms" toml:"actuator.latency" env:"ACTUATOR_LATENCY"`
	ActuatorCommandTimeout         string `help:"Timeout per local command" default:"5s" toml:"actuator.command_timeout" env:"ACTUATOR_COMMAND_TIMEOUT"`
	ActuatorLinkCommand            string `help:"Link command template" default:"" toml:"actuator.link_command" env:"ACTUATOR_LINK_COMMAND"`
	ActuatorCongestionOnCommand    string `help:"Congestion on command template" default:"" toml:"actuator.congestion_on_command" env:"ACTUATOR_CONGESTION_ON_COMMAND"`
	ActuatorCongestionClearCommand string `help:"Congestion clear command template" default:"" toml:"actuator.congestion_clear_command" env:"ACTUATOR_CONGESTION_CLEAR_COMMAND"`

	// ONOS controller
	OnosHost           string `help:"ONOS REST host" default:"127.0.0.1" toml:"onos.host" env:"ONOS_HOST"`
	OnosPort           int    `help:"ONOS REST port" default:"8181" toml:"onos.port" env:"ONOS_PORT"`
	OnosUser           string `help:"ONOS user" default:"onos" toml:"onos.user" env:"ONOS_USER"`
	OnosPassword       string `help:"ONOS password" default:"rocks" toml:"onos.password" env:"ONOS_PASSWORD"`
	OnosTimeout        string `help:"ONOS request timeout" default:"5s" toml:"onos.timeout" env:"ONOS_TIMEOUT"`
	OnosRetries        int    `help:"ONOS request retries" default:"2" toml:"onos.retries" env:"ONOS_RETRIES"`
	OnosDevice         string `help:"OpenFlow device id of the switch" default:"of:0000000000000001" toml:"onos.device_id" env:"ONOS_DEVICE_ID"`
	OnosPortA          string `help:"Device port of host h1" default:"1" toml:"onos.port_a" env:"ONOS_PORT_A"`
	OnosPortB          string `help:"Device port of host h2" default:"2" toml:"onos.port_b" env:"ONOS_PORT_B"`
	OnosCongestionPort string `help:"Device port punted to the controller while congested" default:"1" toml:"onos.congestion_port" env:"ONOS_CONGESTION_PORT"`
	OnosRequiredApps   string `help:"Comma separated applications probe expects to be active" default:"org.onosproject.openflow,org.onosproject.fwd" toml:"onos.required_apps" env:"ONOS_REQUIRED_APPS"`

	// Bridge behaviour
	BridgeDualPolicy           string `help:"Both-links toggle policy (best-effort, strict)" default:"best-effort" toml:"bridge.dual_policy" env:"BRIDGE_DUAL_POLICY"`
	BridgeTemperatureThreshold string `help:"Readings above this many degrees Celsius are high" default:"30" toml:"bridge.temperature_threshold" env:"BRIDGE_TEMPERATURE_THRESHOLD"`

	// Server settings
	ServerListen  string `help:"Status API listen address" short:"p" default:":8090" toml:"server.listen" env:"SERVER_LISTEN"`
	ServerEnabled bool   `help:"Serve the status API" default:"true" toml:"server.enabled" env:"SERVER_ENABLED"`
	AuthUsername  string `help:"Basic auth username, empty disables auth" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword  string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Telemetry
	NatsServer string `help:"NATS server URL for telemetry, empty disables" default:"" toml:"nats.url" env:"NATS_URL"`

	// Features settings
	FeaturesHostLed bool `help:"Mirror switch state on the host status LED" default:"false" toml:"features.host_led_enabled" env:"FEATURES_HOST_LED"`

	// Logging settings
	LoggingLevel    string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingBridge   string `help:"Control loop logging level" default:"info" toml:"logging.bridge" env:"LOGGING_BRIDGE"`
	LoggingPanel    string `help:"Serial panel logging level" default:"info" toml:"logging.panel" env:"LOGGING_PANEL"`
	LoggingActuator string `help:"Actuator logging level" default:"info" toml:"logging.actuator" env:"LOGGING_ACTUATOR"`
	LoggingOnos     string `help:"ONOS client logging level" default:"info" toml:"logging.onos" env:"LOGGING_ONOS"`
	LoggingApi      string `help:"Status API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingNats     string `help:"NATS telemetry logging level" default:"info" toml:"logging.nats" env:"LOGGING_NATS"`
}

func (o *Options) loggingConfig() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Modules: map[string]string{
			logging.ModuleBridge:   o.LoggingBridge,
			logging.ModulePanel:    o.LoggingPanel,
			logging.ModuleActuator: o.LoggingActuator,
			logging.ModuleONOS:     o.LoggingOnos,
			logging.ModuleAPI:      o.LoggingApi,
			logging.ModuleNATS:     o.LoggingNats,
		},
	}
}

func parseDuration(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return d, nil
}

func (o *Options) panelConfig() (panel.Config, error) {
	settle, err := parseDuration("serial.settle", o.SerialSettle)
	if err != nil {
		return panel.Config{}, err
	}
	ready, err := parseDuration("serial.ready_timeout", o.SerialReadyTimeout)
	if err != nil {
		return panel.Config{}, err
	}
	return panel.Config{
		Device:       o.SerialPort,
		BaudRate:     o.SerialBaud,
		SettleDelay:  settle,
		ReadyTimeout: ready,
	}, nil
}

func (o *Options) onosConfig() (onos.Config, error) {
	timeout, err := parseDuration("onos.timeout", o.OnosTimeout)
	if err != nil {
		return onos.Config{}, err
	}
	return onos.Config{
		Host:     o.OnosHost,
		Port:     o.OnosPort,
		Username: o.OnosUser,
		Password: o.OnosPassword,
		Timeout:  timeout,
		Retries:  o.OnosRetries,
	}, nil
}

func (o *Options) actuatorConfig() (actuator.Config, error) {
	timeout, err := parseDuration("actuator.command_timeout", o.ActuatorCommandTimeout)
	if err != nil {
		return actuator.Config{}, err
	}
	client, err := o.onosConfig()
	if err != nil {
		return actuator.Config{}, err
	}
	return actuator.Config{
		Backend: o.ActuatorBackend,
		Local: actuator.LocalConfig{
			Sudo:                   o.ActuatorSudo,
			Switch:                 o.ActuatorSwitch,
			PortA:                  o.ActuatorPortA,
			PortB:                  o.ActuatorPortB,
			Interface:              o.ActuatorInterface,
			Rate:                   o.ActuatorRate,
			Burst:                  o.ActuatorBurst,
			Latency:                o.ActuatorLatency,
			CommandTimeout:         timeout,
			LinkCommand:            o.ActuatorLinkCommand,
			CongestionOnCommand:    o.ActuatorCongestionOnCommand,
			CongestionClearCommand: o.ActuatorCongestionClearCommand,
		},
		ONOS: actuator.ONOSConfig{
			DeviceID:       o.OnosDevice,
			PortA:          o.OnosPortA,
			PortB:          o.OnosPortB,
			CongestionPort: o.OnosCongestionPort,
		},
		Client: client,
	}, nil
}

func (o *Options) loopConfig() (bridge.Config, error) {
	policy, err := bridge.ParsePolicy(o.BridgeDualPolicy)
	if err != nil {
		return bridge.Config{}, err
	}
	threshold := bridge.DefaultTemperatureThreshold
	if o.BridgeTemperatureThreshold != "" {
		threshold, err = strconv.ParseFloat(o.BridgeTemperatureThreshold, 64)
		if err != nil {
			return bridge.Config{}, fmt.Errorf("invalid bridge.temperature_threshold %q: %w", o.BridgeTemperatureThreshold, err)
		}
	}
	return bridge.Config{Policy: policy, TemperatureThreshold: threshold}, nil
}

func (o *Options) requiredApps() []string {
	var apps []string
	for _, app := range strings.Split(o.OnosRequiredApps, ",") {
		if app = strings.TrimSpace(app); app != "" {
			apps = append(apps, app)
		}
	}
	return apps
}
