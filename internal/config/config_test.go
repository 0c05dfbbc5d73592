package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

type testOptions struct {
	Config string

	SerialPort   string        `toml:"serial.port" env:"SERIAL_PORT"`
	SerialBaud   int           `toml:"serial.baud" env:"SERIAL_BAUD"`
	SerialSettle time.Duration `toml:"serial.settle" env:"SERIAL_SETTLE"`
	Threshold    float64       `toml:"bridge.temperature_threshold" env:"BRIDGE_TEMPERATURE_THRESHOLD"`
	Sudo         bool          `toml:"actuator.sudo" env:"ACTUATOR_SUDO"`
	Apps         []string      `toml:"onos.required_apps" env:"ONOS_REQUIRED_APPS"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const sampleConfig = `
[serial]
port = "/dev/ttyACM0"
baud = 115200
settle = "500ms"

[bridge]
temperature_threshold = 28

[actuator]
sudo = true

[onos]
required_apps = ["org.onosproject.openflow", "org.onosproject.fwd"]
`

func TestLoadConfigFromTOML(t *testing.T) {
	opts := &testOptions{Config: writeConfig(t, sampleConfig)}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	want := testOptions{
		Config:       opts.Config,
		SerialPort:   "/dev/ttyACM0",
		SerialBaud:   115200,
		SerialSettle: 500 * time.Millisecond,
		Threshold:    28,
		Sudo:         true,
		Apps:         []string{"org.onosproject.openflow", "org.onosproject.fwd"},
	}
	if !reflect.DeepEqual(*opts, want) {
		t.Errorf("opts = %+v, want %+v", *opts, want)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	t.Setenv("SDNBRIDGE_SERIAL_PORT", "/dev/ttyUSB1")
	t.Setenv("SDNBRIDGE_SERIAL_SETTLE", "3s")
	t.Setenv("SDNBRIDGE_BRIDGE_TEMPERATURE_THRESHOLD", "31.5")
	t.Setenv("SDNBRIDGE_ONOS_REQUIRED_APPS", "a, b")

	opts := &testOptions{Config: writeConfig(t, sampleConfig)}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if opts.SerialPort != "/dev/ttyUSB1" {
		t.Errorf("SerialPort = %q", opts.SerialPort)
	}
	if opts.SerialSettle != 3*time.Second {
		t.Errorf("SerialSettle = %v", opts.SerialSettle)
	}
	if opts.Threshold != 31.5 {
		t.Errorf("Threshold = %v", opts.Threshold)
	}
	if !reflect.DeepEqual(opts.Apps, []string{"a", "b"}) {
		t.Errorf("Apps = %q", opts.Apps)
	}
	// untouched by env
	if opts.SerialBaud != 115200 {
		t.Errorf("SerialBaud = %d", opts.SerialBaud)
	}
}

func TestLoadConfigCLIWins(t *testing.T) {
	t.Setenv("SDNBRIDGE_SERIAL_PORT", "/dev/ttyUSB1")

	opts := &testOptions{Config: writeConfig(t, sampleConfig)}
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&opts.SerialPort, "serial-port", "", "")
	if err := cmd.Flags().Set("serial-port", "/dev/ttyS3"); err != nil {
		t.Fatal(err)
	}

	if err := LoadConfig(opts, cmd); err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if opts.SerialPort != "/dev/ttyS3" {
		t.Errorf("SerialPort = %q, want CLI value", opts.SerialPort)
	}
	if opts.SerialBaud != 115200 {
		t.Errorf("SerialBaud = %d, want file value", opts.SerialBaud)
	}
}

func TestLoadConfigMissingFileKeepsDefaults(t *testing.T) {
	opts := &testOptions{
		Config:     filepath.Join(t.TempDir(), "absent.toml"),
		SerialBaud: 9600,
	}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if opts.SerialBaud != 9600 {
		t.Errorf("SerialBaud = %d, want default", opts.SerialBaud)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "invalid toml", content: "[serial\nport = 1"},
		{name: "wrong type", content: "[serial]\nbaud = \"fast\""},
		{name: "bad env duration", content: "", env: map[string]string{"SDNBRIDGE_SERIAL_SETTLE": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			opts := &testOptions{Config: writeConfig(t, tt.content)}
			if err := LoadConfig(opts, nil); err == nil {
				t.Error("expected error")
			}
		})
	}

	if err := LoadConfig(testOptions{}, nil); err == nil {
		t.Error("expected error for non-pointer options")
	}
}

func TestNumberIntoStringOption(t *testing.T) {
	var opts struct {
		Config    string
		Threshold string `toml:"bridge.temperature_threshold"`
		Listen    string `toml:"server.listen"`
	}
	opts.Config = writeConfig(t, "[bridge]\ntemperature_threshold = 30.5\n[server]\nlisten = 8090\n")
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if opts.Threshold != "30.5" || opts.Listen != "8090" {
		t.Errorf("Threshold = %q, Listen = %q", opts.Threshold, opts.Listen)
	}
}

func TestDurationFromIntegerSeconds(t *testing.T) {
	opts := &testOptions{Config: writeConfig(t, "[serial]\nsettle = 4\n")}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if opts.SerialSettle != 4*time.Second {
		t.Errorf("SerialSettle = %v, want 4s", opts.SerialSettle)
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := map[string]string{
		"Port":         "port",
		"SerialPort":   "serial-port",
		"OnosHost":     "onos-host",
		"ActuatorSudo": "actuator-sudo",
	}
	for in, want := range tests {
		if got := fieldNameToFlag(in); got != want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetNestedValue(t *testing.T) {
	data := map[string]any{
		"serial": map[string]any{"port": "/dev/ttyACM0"},
		"top":    "value",
	}
	if got := getNestedValue(data, "serial.port"); got != "/dev/ttyACM0" {
		t.Errorf("serial.port = %v", got)
	}
	if got := getNestedValue(data, "top"); got != "value" {
		t.Errorf("top = %v", got)
	}
	if got := getNestedValue(data, "top.missing"); got != nil {
		t.Errorf("top.missing = %v, want nil", got)
	}
}

func TestLoadLoggingConfig(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "debug"
format = "json"
panel = "warn"

[logging.modules]
actuator = "error"
`)
	cfg := LoadLoggingConfig(path)
	if cfg.Level != "debug" || cfg.Format != "json" {
		t.Errorf("Level/Format = %s/%s", cfg.Level, cfg.Format)
	}
	want := map[string]string{"panel": "warn", "actuator": "error"}
	if !reflect.DeepEqual(cfg.Modules, want) {
		t.Errorf("Modules = %v, want %v", cfg.Modules, want)
	}

	def := LoadLoggingConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if def.Level != "info" || def.Format != "text" || len(def.Modules) != 0 {
		t.Errorf("defaults = %+v", def)
	}
}
