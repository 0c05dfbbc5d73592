package bridge

import "fmt"

// Direction is a joystick direction.
type Direction int

// Joystick directions.
const (
	DirectionUp Direction = iota
	DirectionLeft
	DirectionRight
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	case DirectionDown:
		return "down"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Select sets the target from a joystick direction. The previous selection
// has no influence on the result.
func Select(s State, d Direction) State {
	switch d {
	case DirectionUp:
		s.Target = TargetSwitch
	case DirectionLeft:
		s.Target = TargetA
	case DirectionRight:
		s.Target = TargetB
	case DirectionDown:
		s.Target = TargetBoth
	}
	return s
}
