package led

import (
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// StatusLED is the logical name of the host LED the Manager drives.
const StatusLED = "status"

// New returns a host LED controller for the detected board, or a no-op
// controller when the board has no known status LED.
func New(logger *slog.Logger) Controller {
	model := detectBoard(deviceTreeModelPath)
	logger.Info("Detecting board for host LED", "board_model", model)

	switch {
	case strings.Contains(model, "Raspberry Pi"):
		return newSysfs("", map[string]string{StatusLED: "ACT"})
	case strings.Contains(model, "NanoPC-T6"):
		return newSysfs("", map[string]string{StatusLED: "sys_led"})
	case strings.Contains(model, "Orange Pi"):
		return newSysfs("", map[string]string{StatusLED: "green_led"})
	default:
		logger.Info("No host LED support detected, using no-op controller")
		return newNoop(logger)
	}
}

// detectBoard reads the device tree model to identify the board.
func detectBoard(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}
	// Device tree strings are NUL terminated.
	return strings.TrimRight(string(data), "\x00")
}
