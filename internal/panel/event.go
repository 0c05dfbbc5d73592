package panel

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the decoded type of a panel line.
type Kind int

// Panel event kinds.
const (
	KindIgnore      Kind = iota // empty line or handshake token
	KindJoyUp                   // joystick pushed up
	KindJoyLeft                 // joystick pushed left
	KindJoyRight                // joystick pushed right
	KindJoyDown                 // joystick pushed down
	KindButton                  // toggle button pressed
	KindTemperature             // TEMP:<float>
	KindMalformed               // known keyword with an invalid payload
	KindUnknown                 // anything else
)

// Wire tokens sent by the panel firmware.
const (
	TokenReady      = "READY"
	TokenJoyUp      = "JOY_UP"
	TokenJoyLeft    = "JOY_LEFT"
	TokenJoyRight   = "JOY_RIGHT"
	TokenJoyDown    = "JOY_DOWN"
	TokenButton     = "BUTTON"
	TokenTempPrefix = "TEMP:"
)

// ErrMalformed is returned (wrapped) for lines whose payload cannot be decoded.
var ErrMalformed = errors.New("malformed panel line")

var kindNames = map[Kind]string{
	KindIgnore:      "ignore",
	KindJoyUp:       "joy_up",
	KindJoyLeft:     "joy_left",
	KindJoyRight:    "joy_right",
	KindJoyDown:     "joy_down",
	KindButton:      "button",
	KindTemperature: "temperature",
	KindMalformed:   "malformed",
	KindUnknown:     "unknown",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is one decoded panel line.
type Event struct {
	Kind  Kind
	Raw   string  // trimmed line as received
	Value float64 // temperature reading, KindTemperature only
	Err   error   // decode failure, KindMalformed only
}

// Parse decodes a single line from the panel. It never fails: lines that
// cannot be decoded become KindMalformed or KindUnknown events.
func Parse(line string) Event {
	raw := strings.TrimSpace(line)

	switch raw {
	case "", TokenReady:
		return Event{Kind: KindIgnore, Raw: raw}
	case TokenJoyUp:
		return Event{Kind: KindJoyUp, Raw: raw}
	case TokenJoyLeft:
		return Event{Kind: KindJoyLeft, Raw: raw}
	case TokenJoyRight:
		return Event{Kind: KindJoyRight, Raw: raw}
	case TokenJoyDown:
		return Event{Kind: KindJoyDown, Raw: raw}
	case TokenButton:
		return Event{Kind: KindButton, Raw: raw}
	}

	if payload, ok := strings.CutPrefix(raw, TokenTempPrefix); ok {
		value, err := parseTemperature(payload)
		if err != nil {
			return Event{Kind: KindMalformed, Raw: raw, Err: err}
		}
		return Event{Kind: KindTemperature, Raw: raw, Value: value}
	}

	return Event{Kind: KindUnknown, Raw: raw}
}

func parseTemperature(payload string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(payload), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: temperature %q: %w", ErrMalformed, payload, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: temperature %q is not finite", ErrMalformed, payload)
	}
	return value, nil
}
