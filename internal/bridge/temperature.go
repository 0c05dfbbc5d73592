package bridge

// DefaultTemperatureThreshold is the reading above which the panel
// temperature is reported as high.
const DefaultTemperatureThreshold = 30.0

// Level classifies a temperature reading for display.
type Level string

// Temperature levels.
const (
	LevelNormal Level = "normal"
	LevelHigh   Level = "high"
)

// Classify returns LevelHigh for readings strictly above threshold.
func Classify(celsius, threshold float64) Level {
	if celsius > threshold {
		return LevelHigh
	}
	return LevelNormal
}

// RecordTemperature stores a reading. The level is advisory and never
// affects actuation or LEDs.
func RecordTemperature(s State, celsius, threshold float64) (State, Level) {
	s.Temperature = celsius
	s.HasTemperature = true
	return s, Classify(celsius, threshold)
}
