package bridge

import (
	"fmt"

	"github.com/smazurov/sdnbridge/internal/led"
)

// Encode derives the LED frame from the network state. The selected target
// does not affect the frame.
func Encode(s State) led.Frame {
	f := led.Frame{
		A:      linkColor(s.Connected[LinkA]),
		B:      linkColor(s.Connected[LinkB]),
		Switch: led.Green,
	}
	switch {
	case s.AllDown():
		f.Switch = led.Red
	case s.Congested:
		f.Switch = led.Blue
	}
	return f
}

func linkColor(connected bool) led.Color {
	if connected {
		return led.Green
	}
	return led.Red
}

// StatusLines renders the human-readable status report, marking the
// selected device.
func StatusLines(s State) []string {
	lines := []string{
		fmt.Sprintf("h1 (link A): %s%s", linkStatus(s.Connected[LinkA]), selectedMark(s.Target == TargetA || s.Target == TargetBoth)),
		fmt.Sprintf("h2 (link B): %s%s", linkStatus(s.Connected[LinkB]), selectedMark(s.Target == TargetB || s.Target == TargetBoth)),
		fmt.Sprintf("s1 (switch): %s%s", switchStatus(s), selectedMark(s.Target == TargetSwitch)),
	}
	if s.HasTemperature {
		lines = append(lines, fmt.Sprintf("temperature: %.1f°C", s.Temperature))
	}
	return lines
}

func linkStatus(connected bool) string {
	if connected {
		return "CONNECTED"
	}
	return "DISCONNECTED"
}

func switchStatus(s State) string {
	switch {
	case s.AllDown():
		return "ISOLATED"
	case s.Congested:
		return "CONGESTED"
	default:
		return "NORMAL"
	}
}

func selectedMark(selected bool) string {
	if selected {
		return " (SELECTED)"
	}
	return ""
}
