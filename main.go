package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/smazurov/sdnbridge/cmd"
	"github.com/smazurov/sdnbridge/internal/actuator"
	"github.com/smazurov/sdnbridge/internal/api"
	"github.com/smazurov/sdnbridge/internal/bridge"
	"github.com/smazurov/sdnbridge/internal/config"
	"github.com/smazurov/sdnbridge/internal/events"
	"github.com/smazurov/sdnbridge/internal/hotplug"
	"github.com/smazurov/sdnbridge/internal/led"
	"github.com/smazurov/sdnbridge/internal/logging"
	"github.com/smazurov/sdnbridge/internal/metrics/exporters"
	"github.com/smazurov/sdnbridge/internal/nats"
	"github.com/smazurov/sdnbridge/internal/onos"
	"github.com/smazurov/sdnbridge/internal/panel"
	"github.com/smazurov/sdnbridge/internal/systemd"
	"github.com/smazurov/sdnbridge/internal/version"
)

// shutdownTimeout bounds how long a stop signal waits for the loop to
// restore the panel LEDs.
const shutdownTimeout = 10 * time.Second

func main() {
	var cli humacli.CLI
	var current *Options

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}
		current = opts

		logging.Initialize(opts.loggingConfig())
		logger := logging.GetLogger(logging.ModuleMain)

		ctx, cancel := context.WithCancel(context.Background())
		finished := make(chan struct{})

		hooks.OnStart(func() {
			defer close(finished)
			if err := run(ctx, opts, logger); err != nil {
				logger.Error("Bridge stopped with error", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			cancel()
			select {
			case <-finished:
			case <-time.After(shutdownTimeout):
				logger.Warn("Shutdown timed out", "timeout", shutdownTimeout)
			}
		})
	})

	root := cli.Root()
	root.Use = "sdnbridge"
	root.Short = "Bridge a serial control panel to SDN link and congestion actuation"
	root.Version = version.Long()

	root.AddCommand(cmd.CreatePortsCmd())
	root.AddCommand(cmd.CreateActuateCmd(func() (actuator.Config, error) {
		return current.actuatorConfig()
	}))
	root.AddCommand(cmd.CreateProbeCmd(func() (onos.Config, cmd.ProbeTarget, error) {
		cfg, err := current.onosConfig()
		target := cmd.ProbeTarget{
			DeviceID:     current.OnosDevice,
			RequiredApps: current.requiredApps(),
		}
		return cfg, target, err
	}))
	root.AddCommand(cmd.CreateWatchCmd(func() string {
		return current.NatsServer
	}))

	cli.Run()
}

// run wires the bridge and blocks until ctx is cancelled.
func run(ctx context.Context, opts *Options, logger *slog.Logger) error {
	panelCfg, err := opts.panelConfig()
	if err != nil {
		return err
	}
	actCfg, err := opts.actuatorConfig()
	if err != nil {
		return err
	}
	loopCfg, err := opts.loopConfig()
	if err != nil {
		return err
	}

	eventBus := events.New()
	logging.SetLogCallback(func(e logging.LogEntry) {
		eventBus.Publish(events.LogEntryEvent{
			Timestamp:  e.Timestamp.Format(time.RFC3339Nano),
			Level:      e.Level,
			Module:     e.Module,
			Message:    e.Message,
			Attributes: e.Attributes,
		})
	})
	defer logging.SetLogCallback(nil)

	go systemd.RunWatchdog(ctx, logger)

	// Logging levels follow the config file without a restart.
	watcher := config.NewWatcher(opts.Config, func(path string) (logging.Config, error) {
		return config.LoadLoggingConfig(path), nil
	}, config.DefaultDebounce, logging.GetLogger(logging.ModuleConfig))
	watcher.OnReload(func(cfg logging.Config) {
		logging.SetLevels(cfg)
		logger.Info("Logging levels reloaded", "level", cfg.Level)
	})
	go func() {
		if watchErr := watcher.Run(ctx); watchErr != nil {
			logger.Warn("Config watcher stopped", "error", watchErr)
		}
	}()

	act, err := actuator.New(actCfg, eventBus, logging.GetLogger(logging.ModuleActuator))
	if err != nil {
		return err
	}

	port, err := panel.Open(panelCfg, logging.GetLogger(logging.ModulePanel))
	if err != nil {
		return fmt.Errorf("failed to open panel: %w", err)
	}

	presence := hotplug.NewPresence(port.Name(), eventBus, logging.GetLogger(logging.ModulePanel))
	go func() {
		if watchErr := presence.Watch(ctx); watchErr != nil {
			logger.Warn("Panel hotplug monitoring unavailable", "error", watchErr)
		}
	}()

	var ledController led.Controller
	if opts.FeaturesHostLed {
		ledLogger := logging.GetLogger(logging.ModuleLED)
		ledController = led.New(ledLogger)
		ledManager := led.NewManager(ledController, eventBus, ledLogger)
		ledManager.Start()
		defer ledManager.Stop()
	}

	if opts.NatsServer != "" {
		natsLogger := logging.GetLogger(logging.ModuleNATS)
		publisher := nats.NewPublisher(opts.NatsServer, natsLogger)
		_ = publisher.Connect() // telemetry is optional; failures are logged
		forwarder := nats.NewForwarder(publisher, eventBus, natsLogger)
		forwarder.Start()
		defer publisher.Close()
		defer forwarder.Stop()
	}

	if opts.ServerEnabled {
		server := api.NewServer(&api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			EventBus:          eventBus,
			LEDController:     ledController,
			PrometheusHandler: exporters.HTTPHandler(),
		})
		go func() {
			if startErr := server.Start(opts.ServerListen); startErr != nil {
				logger.Error("Failed to start HTTP server", "error", startErr)
			}
		}()
		defer func() {
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}
		}()
	}

	loop := bridge.NewLoop(port, act, eventBus, logging.GetLogger(logging.ModuleBridge), loopCfg)

	logger.Info("Bridge started", "panel", port.Name(), "backend", act.Backend(), "version", version.String())
	systemd.Ready(logger)
	systemd.Status(logger, fmt.Sprintf("panel %s, backend %s", port.Name(), act.Backend()))

	err = loop.Run(ctx)
	systemd.Stopping(logger)
	return err
}
