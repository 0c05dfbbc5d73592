package actuator

import (
	"fmt"
	"log/slog"

	"github.com/smazurov/sdnbridge/internal/bridge"
	"github.com/smazurov/sdnbridge/internal/events"
	"github.com/smazurov/sdnbridge/internal/onos"
	"github.com/smazurov/sdnbridge/internal/process"
)

// Backend names.
const (
	BackendLocal  = "local"
	BackendONOS   = "onos"
	BackendDryRun = "dry-run"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	Local   LocalConfig
	ONOS    ONOSConfig
	Client  onos.Config
}

// New builds the configured backend wrapped in Instrumented. bus may be nil.
func New(cfg Config, bus *events.Bus, logger *slog.Logger) (*Instrumented, error) {
	var (
		next bridge.Actuator
		name = cfg.Backend
	)
	switch name {
	case "", BackendLocal:
		name = BackendLocal
		next = NewLocal(cfg.Local, process.Default, logger)
	case BackendONOS:
		next = NewONOS(cfg.ONOS, onos.NewClient(cfg.Client, logger), logger)
	case BackendDryRun:
		next = NewDryRun(logger)
	default:
		return nil, fmt.Errorf("unknown actuator backend %q (want %s, %s or %s)", cfg.Backend, BackendLocal, BackendONOS, BackendDryRun)
	}
	logger.Info("Actuator backend selected", "backend", name)
	return NewInstrumented(next, name, bus, logger), nil
}
