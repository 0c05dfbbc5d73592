// Package exporters exposes the bridge metrics over HTTP.
package exporters

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smazurov/sdnbridge/internal/version"
)

var registerBuildInfo sync.Once

// HTTPHandler serves every collector in the default registry, plus
// sdnbridge_build_info, in text or OpenMetrics format.
func HTTPHandler() http.Handler {
	registerBuildInfo.Do(func() {
		info := version.Get()
		prometheus.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   "sdnbridge",
			Name:        "build_info",
			Help:        "Always 1; labels carry the build metadata",
			ConstLabels: prometheus.Labels{"version": info.Version, "commit": info.GitCommit, "goversion": info.GoVersion},
		}, func() float64 { return 1 }))
	})

	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
