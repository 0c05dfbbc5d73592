package led

import "fmt"

// Color is a panel LED color as understood by the panel firmware.
type Color string

// Panel LED colors.
const (
	Green Color = "GREEN"
	Red   Color = "RED"
	Blue  Color = "BLUE"
)

// Channel identifies one of the three panel LEDs.
type Channel string

// Panel LED channels.
const (
	ChannelA      Channel = "LED1" // link A (host h1)
	ChannelB      Channel = "LED2" // link B (host h2)
	ChannelSwitch Channel = "LED3" // shared switch, RGB
)

// Frame is the full set of panel LED colors. It is always sent whole,
// never as a delta, so a lost line is corrected by the next frame.
type Frame struct {
	A      Color `json:"led_a" example:"GREEN" doc:"Link A LED"`
	B      Color `json:"led_b" example:"GREEN" doc:"Link B LED"`
	Switch Color `json:"led_switch" example:"BLUE" doc:"Switch LED"`
}

// AllGreen is the frame shown at startup and restored on shutdown.
var AllGreen = Frame{A: Green, B: Green, Switch: Green}

// Command renders a single wire command, e.g. "LED3:BLUE".
func Command(ch Channel, c Color) string {
	return fmt.Sprintf("%s:%s", ch, c)
}

// Lines renders the frame as wire commands in channel order.
func (f Frame) Lines() []string {
	return []string{
		Command(ChannelA, f.A),
		Command(ChannelB, f.B),
		Command(ChannelSwitch, f.Switch),
	}
}
