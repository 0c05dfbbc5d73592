// Package metrics provides Prometheus metrics for the panel bridge.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sdnbridge"

var (
	panelEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "panel_events_total",
		Help:      "Lines received from the panel by decoded kind",
	}, []string{"kind"})

	linkConnected = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "link_connected",
		Help:      "1 when the link passes traffic",
	}, []string{"link"})

	switchCongested = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "switch_congested",
		Help:      "1 when bandwidth throttling is active on the switch",
	})

	temperature = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "temperature_celsius",
		Help:      "Last temperature reported by the panel",
	})

	panelConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "panel_connected",
		Help:      "1 while the panel serial device is present",
	})

	feedbackFrames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feedback_frames_total",
		Help:      "LED frames sent to the panel",
	})

	// Local copy of the gauges for the status API.
	snapshot   = Snapshot{Links: map[string]bool{}}
	snapshotMu sync.RWMutex
)

// Snapshot holds the current gauge values and counters.
type Snapshot struct {
	Links          map[string]bool
	Congested      bool
	Temperature    float64
	HasTemperature bool
	FeedbackFrames uint64
	PanelEvents    uint64
}

// RecordPanelEvent counts one received line.
func RecordPanelEvent(kind string) {
	panelEvents.WithLabelValues(kind).Inc()
	update(func(s *Snapshot) { s.PanelEvents++ })
}

// SetLinkConnected records whether a link passes traffic.
func SetLinkConnected(link string, connected bool) {
	linkConnected.WithLabelValues(link).Set(boolToFloat(connected))
	update(func(s *Snapshot) { s.Links[link] = connected })
}

// SetCongested records the switch congestion state.
func SetCongested(congested bool) {
	switchCongested.Set(boolToFloat(congested))
	update(func(s *Snapshot) { s.Congested = congested })
}

// SetTemperature records the last temperature reading.
func SetTemperature(celsius float64) {
	temperature.Set(celsius)
	update(func(s *Snapshot) {
		s.Temperature = celsius
		s.HasTemperature = true
	})
}

// SetPanelConnected records whether the panel device is present.
func SetPanelConnected(connected bool) {
	panelConnected.Set(boolToFloat(connected))
}

// IncFeedbackFrames counts one LED frame sent to the panel.
func IncFeedbackFrames() {
	feedbackFrames.Inc()
	update(func(s *Snapshot) { s.FeedbackFrames++ })
}

// Current returns a copy of the current values.
func Current() Snapshot {
	snapshotMu.RLock()
	defer snapshotMu.RUnlock()
	dup := snapshot
	dup.Links = make(map[string]bool, len(snapshot.Links))
	for k, v := range snapshot.Links {
		dup.Links[k] = v
	}
	return dup
}

func update(fn func(*Snapshot)) {
	snapshotMu.Lock()
	defer snapshotMu.Unlock()
	fn(&snapshot)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
