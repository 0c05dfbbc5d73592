package panel

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// ErrNoPort is returned when auto-detection finds no candidate port.
var ErrNoPort = errors.New("no panel serial port found")

// USB vendor ids of boards and USB-serial bridges commonly used for the panel.
var knownVendors = map[string]string{
	"2341": "Arduino",
	"2a03": "Arduino (.org)",
	"1a86": "CH340",
	"0403": "FTDI",
	"10c4": "CP210x",
}

// PortInfo describes a serial port found on the host.
type PortInfo struct {
	Name    string `json:"name"`
	USB     bool   `json:"usb"`
	VID     string `json:"vid,omitempty"`
	PID     string `json:"pid,omitempty"`
	Serial  string `json:"serial,omitempty"`
	Product string `json:"product,omitempty"`
	Vendor  string `json:"vendor,omitempty"`
}

// ListPorts enumerates serial ports, falling back to plain names when USB
// details are unavailable on this platform.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		ports := make([]PortInfo, 0, len(details))
		for _, d := range details {
			info := PortInfo{Name: d.Name, USB: d.IsUSB}
			if d.IsUSB {
				info.VID = strings.ToLower(d.VID)
				info.PID = strings.ToLower(d.PID)
				info.Serial = d.SerialNumber
				info.Product = d.Product
				info.Vendor = knownVendors[info.VID]
			}
			ports = append(ports, info)
		}
		sortPorts(ports)
		return ports, nil
	}

	names, listErr := serial.GetPortsList()
	if listErr != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", errors.Join(err, listErr))
	}
	ports := make([]PortInfo, 0, len(names))
	for _, name := range names {
		ports = append(ports, PortInfo{Name: name})
	}
	sortPorts(ports)
	return ports, nil
}

func sortPorts(ports []PortInfo) {
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
}

// Detect returns the most likely panel port.
func Detect() (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", err
	}
	return choosePort(ports)
}

// choosePort prefers a known USB vendor, then any ACM/USB tty device.
func choosePort(ports []PortInfo) (string, error) {
	for _, p := range ports {
		if p.Vendor != "" {
			return p.Name, nil
		}
	}
	for _, p := range ports {
		if strings.HasPrefix(p.Name, "/dev/ttyACM") || strings.HasPrefix(p.Name, "/dev/ttyUSB") {
			return p.Name, nil
		}
	}
	for _, p := range ports {
		if p.USB {
			return p.Name, nil
		}
	}
	return "", ErrNoPort
}
