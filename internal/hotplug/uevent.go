// Package hotplug watches kernel uevents for the panel's serial device.
//
// On Linux the monitor reads NETLINK_KOBJECT_UEVENT broadcasts directly,
// without libudev. Other platforms get ErrUnsupported and the bridge runs
// without presence tracking.
package hotplug

import (
	"bytes"
	"errors"
	"strings"
)

// Kernel actions the presence watcher reacts to.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// SubsystemTTY is the subsystem of serial device nodes.
const SubsystemTTY = "tty"

// ErrUnsupported is returned by NewMonitor where uevents are unavailable.
var ErrUnsupported = errors.New("hotplug monitoring is not supported on this platform")

// Event is one kernel device event.
type Event struct {
	Action    string
	KObj      string // e.g. /devices/pci0000:00/.../tty/ttyACM0
	Subsystem string
	DevName   string // e.g. ttyACM0
	Env       map[string]string
}

// DevNode returns the /dev path of the event's device, or "" if the event
// carries no DEVNAME.
func (e Event) DevNode() string {
	if e.DevName == "" {
		return ""
	}
	if strings.HasPrefix(e.DevName, "/") {
		return e.DevName
	}
	return "/dev/" + e.DevName
}

// parseUEvent decodes "ACTION@KOBJ\0KEY=VALUE\0...". Messages relayed by
// udevd start with a "libudev" header that is skipped.
func parseUEvent(data []byte) (Event, bool) {
	if bytes.HasPrefix(data, []byte("libudev")) {
		for i := 0; i < len(data)-1; i++ {
			if data[i] != 0 {
				continue
			}
			rest := data[i+1:]
			segment, _, _ := bytes.Cut(rest, []byte{0})
			if idx := bytes.IndexByte(segment, '@'); idx > 0 && idx < 20 {
				data = rest
				break
			}
		}
	}

	parts := bytes.Split(data, []byte{0})
	if len(parts) == 0 || len(parts[0]) == 0 {
		return Event{}, false
	}

	action, kobj, ok := strings.Cut(string(parts[0]), "@")
	if !ok || action == "" {
		return Event{}, false
	}

	ev := Event{Action: action, KObj: kobj, Env: make(map[string]string)}
	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(string(part), "=")
		if !ok || key == "" {
			continue
		}
		ev.Env[key] = value
		switch key {
		case "SUBSYSTEM":
			ev.Subsystem = value
		case "DEVNAME":
			ev.DevName = value
		}
	}
	return ev, true
}
