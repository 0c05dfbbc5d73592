package main

import (
	"slices"
	"testing"
	"time"

	"github.com/smazurov/sdnbridge/internal/bridge"
)

func defaultOptions() *Options {
	return &Options{
		SerialBaud:                 9600,
		SerialSettle:               "2s",
		SerialReadyTimeout:         "5s",
		ActuatorBackend:            "local",
		ActuatorCommandTimeout:     "5s",
		OnosHost:                   "127.0.0.1",
		OnosPort:                   8181,
		OnosTimeout:                "5s",
		OnosRequiredApps:           "org.onosproject.openflow, org.onosproject.fwd,,",
		BridgeDualPolicy:           "best-effort",
		BridgeTemperatureThreshold: "30",
	}
}

func TestPanelConfig(t *testing.T) {
	opts := defaultOptions()
	cfg, err := opts.panelConfig()
	if err != nil {
		t.Fatalf("panelConfig() error: %v", err)
	}
	if cfg.SettleDelay != 2*time.Second || cfg.ReadyTimeout != 5*time.Second || cfg.BaudRate != 9600 {
		t.Errorf("panelConfig() = %+v", cfg)
	}

	opts.SerialReadyTimeout = ""
	if cfg, _ = opts.panelConfig(); cfg.ReadyTimeout != 0 {
		t.Errorf("empty ready timeout = %v, want 0", cfg.ReadyTimeout)
	}
}

func TestOptionErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		check  func(*Options) error
	}{
		{"settle", func(o *Options) { o.SerialSettle = "soon" }, func(o *Options) error { _, err := o.panelConfig(); return err }},
		{"onos timeout", func(o *Options) { o.OnosTimeout = "5" }, func(o *Options) error { _, err := o.onosConfig(); return err }},
		{"command timeout", func(o *Options) { o.ActuatorCommandTimeout = "x" }, func(o *Options) error { _, err := o.actuatorConfig(); return err }},
		{"policy", func(o *Options) { o.BridgeDualPolicy = "maybe" }, func(o *Options) error { _, err := o.loopConfig(); return err }},
		{"threshold", func(o *Options) { o.BridgeTemperatureThreshold = "warm" }, func(o *Options) error { _, err := o.loopConfig(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			tt.mutate(opts)
			if err := tt.check(opts); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoopConfig(t *testing.T) {
	opts := defaultOptions()
	opts.BridgeDualPolicy = "strict"
	opts.BridgeTemperatureThreshold = "27.5"

	cfg, err := opts.loopConfig()
	if err != nil {
		t.Fatalf("loopConfig() error: %v", err)
	}
	if cfg.Policy != bridge.PolicyStrict || cfg.TemperatureThreshold != 27.5 {
		t.Errorf("loopConfig() = %+v", cfg)
	}

	opts.BridgeTemperatureThreshold = ""
	if cfg, _ = opts.loopConfig(); cfg.TemperatureThreshold != bridge.DefaultTemperatureThreshold {
		t.Errorf("empty threshold = %v, want default", cfg.TemperatureThreshold)
	}
}

func TestActuatorConfigCarriesClient(t *testing.T) {
	opts := defaultOptions()
	opts.OnosHost = "10.0.0.9"
	opts.OnosPortA = "3"

	cfg, err := opts.actuatorConfig()
	if err != nil {
		t.Fatalf("actuatorConfig() error: %v", err)
	}
	if cfg.Client.Host != "10.0.0.9" || cfg.ONOS.PortA != "3" || cfg.Local.CommandTimeout != 5*time.Second {
		t.Errorf("actuatorConfig() = %+v", cfg)
	}
}

func TestRequiredApps(t *testing.T) {
	got := defaultOptions().requiredApps()
	want := []string{"org.onosproject.openflow", "org.onosproject.fwd"}
	if !slices.Equal(got, want) {
		t.Errorf("requiredApps() = %v, want %v", got, want)
	}
}
