// Package logging provides structured logging with per-module log levels.
//
// Loggers are created per module and tagged with a "module" attribute:
//
//	logger := logging.GetLogger("bridge")
//	logger.Info("Device selected", "target", "a")
//
// Records go to stdout (text or JSON), to the systemd journal when journald
// is reachable, and to an in-memory ring buffer served by the status API.
// Journal entries use the identifier "sdnbridge":
//
//	journalctl -t sdnbridge -f
//	journalctl -t sdnbridge MODULE=actuator -p err
//
// Levels are set globally with per-module overrides and can be changed at
// runtime with [SetLevels], e.g. from a config file reload:
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	panel = "debug"
//	onos = "warn"
package logging
