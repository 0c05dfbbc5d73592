package actuator

import (
	"context"
	"log/slog"

	"github.com/smazurov/sdnbridge/internal/bridge"
)

// DryRun logs every call and reports success.
type DryRun struct {
	logger *slog.Logger
}

// NewDryRun creates a dry-run backend.
func NewDryRun(logger *slog.Logger) *DryRun {
	return &DryRun{logger: logger}
}

func (d *DryRun) LinkUp(_ context.Context, link bridge.LinkID) error {
	d.logger.Info("Dry run: link up", "link", link)
	return nil
}

func (d *DryRun) LinkDown(_ context.Context, link bridge.LinkID) error {
	d.logger.Info("Dry run: link down", "link", link)
	return nil
}

func (d *DryRun) CongestionOn(context.Context) error {
	d.logger.Info("Dry run: congestion on")
	return nil
}

func (d *DryRun) CongestionOff(context.Context) error {
	d.logger.Info("Dry run: congestion off")
	return nil
}
