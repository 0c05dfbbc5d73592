// Package systemd reports service state to the systemd service manager.
// All functions are no-ops when the process is not started by systemd.
package systemd

import (
	"context"
	"log/slog"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// notifier matches daemon.SdNotify.
type notifier func(unsetEnvironment bool, state string) (bool, error)

var sdNotify notifier = daemon.SdNotify

// Ready tells systemd that startup finished (Type=notify units).
func Ready(logger *slog.Logger) {
	notify(logger, daemon.SdNotifyReady)
}

// Stopping tells systemd that shutdown has begun.
func Stopping(logger *slog.Logger) {
	notify(logger, daemon.SdNotifyStopping)
}

// Status sets the free-form status line shown by systemctl status.
func Status(logger *slog.Logger, status string) {
	notify(logger, "STATUS="+status)
}

func notify(logger *slog.Logger, state string) {
	sent, err := sdNotify(false, state)
	if err != nil {
		logger.Warn("sd_notify failed", "state", state, "error", err)
		return
	}
	if sent {
		logger.Debug("sd_notify sent", "state", state)
	}
}

// RunWatchdog pings the systemd watchdog at half the configured interval
// until ctx is done. It returns immediately when WatchdogSec is unset.
func RunWatchdog(ctx context.Context, logger *slog.Logger) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		logger.Warn("Failed to read watchdog settings", "error", err)
		return
	}
	if interval == 0 {
		return
	}
	runWatchdog(ctx, logger, interval/2)
}

func runWatchdog(ctx context.Context, logger *slog.Logger, every time.Duration) {
	logger.Info("systemd watchdog enabled", "interval", every)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			notify(logger, daemon.SdNotifyWatchdog)
		}
	}
}
