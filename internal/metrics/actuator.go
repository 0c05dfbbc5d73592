package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Actuation results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	actuations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actuations_total",
		Help:      "Actuator calls by action and result",
	}, []string{"action", "result"})

	actuationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "actuation_duration_seconds",
		Help:      "Actuator call latency",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"action"})
)

// RecordActuation counts one actuator call and observes its latency.
func RecordActuation(action string, err error, d time.Duration) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	actuations.WithLabelValues(action, result).Inc()
	actuationDuration.WithLabelValues(action).Observe(d.Seconds())
}
