package bridge

import "fmt"

// LinkID identifies one of the two actuable host links.
type LinkID int

// Links attached to the switch.
const (
	LinkA LinkID = iota // host h1
	LinkB               // host h2
)

// Links lists every link in channel order.
var Links = [...]LinkID{LinkA, LinkB}

func (l LinkID) String() string {
	switch l {
	case LinkA:
		return "a"
	case LinkB:
		return "b"
	default:
		return fmt.Sprintf("link(%d)", int(l))
	}
}

// ParseLinkID accepts "a", "b", "link-a" and "link-b".
func ParseLinkID(s string) (LinkID, error) {
	switch s {
	case "a", "A", "link-a":
		return LinkA, nil
	case "b", "B", "link-b":
		return LinkB, nil
	default:
		return 0, fmt.Errorf("unknown link %q", s)
	}
}

// Target is the device the next toggle acts on.
type Target int

// Selection targets.
const (
	TargetNone Target = iota
	TargetA
	TargetB
	TargetSwitch
	TargetBoth
)

var targetNames = map[Target]string{
	TargetNone:   "none",
	TargetA:      "a",
	TargetB:      "b",
	TargetSwitch: "switch",
	TargetBoth:   "both",
}

func (t Target) String() string {
	if name, ok := targetNames[t]; ok {
		return name
	}
	return fmt.Sprintf("target(%d)", int(t))
}

// targetForLink returns the single-link target for l.
func targetForLink(l LinkID) Target {
	if l == LinkB {
		return TargetB
	}
	return TargetA
}

// State is the complete bridge state. It is a value: handlers return an
// updated copy instead of mutating shared data.
type State struct {
	Target         Target
	Connected      [len(Links)]bool
	Congested      bool
	Temperature    float64
	HasTemperature bool
}

// NewState returns the startup state: every link connected, no congestion,
// nothing selected.
func NewState() State {
	s := State{Target: TargetNone}
	for _, l := range Links {
		s.Connected[l] = true
	}
	return s
}

// IsConnected reports whether link l passes traffic.
func (s State) IsConnected(l LinkID) bool {
	return s.Connected[l]
}

// AllDown reports whether every link is disconnected.
func (s State) AllDown() bool {
	for _, l := range Links {
		if s.Connected[l] {
			return false
		}
	}
	return true
}
