package led

// Controller abstracts the host board's own status LED (the machine running
// the bridge, not the panel). Implementations handle board-specific naming.
type Controller interface {
	// Set controls an LED's state and optional pattern
	// Parameters:
	//   name:    board-specific LED identifier (e.g., "user", "system", "act")
	//   enabled: whether the LED should be on or off
	//   pattern: optional pattern ("solid", "blink", "heartbeat"),
	//            empty string means no pattern change
	Set(name string, enabled bool, pattern string) error

	// Available returns the LED names supported by this controller
	Available() []string
}
