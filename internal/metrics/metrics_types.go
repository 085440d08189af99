// Package metrics exposes Prometheus instruments for graph building, route
// search, drill stepping and the HTTP surface.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application. All Record methods are
// safe on a nil *Registry and do nothing.
type Registry struct {
	// Graph Metrics
	GraphBuildsTotal           prometheus.Counter
	GraphBuildDuration         prometheus.Histogram
	GraphNodes                 *prometheus.GaugeVec
	SkippedAreasTotal          prometheus.Counter
	UnresolvedConnectionsTotal prometheus.Counter
	AmbiguousConnectionsTotal  prometheus.Counter

	// Routing Metrics
	PathSearchesTotal      *prometheus.CounterVec
	PathFallbacksTotal     *prometheus.CounterVec
	PathSearchDuration     prometheus.Histogram
	AgentsWithoutExitTotal prometheus.Counter

	// Simulation Metrics
	TicksTotal              prometheus.Counter
	TickDuration            prometheus.Histogram
	Agents                  *prometheus.GaugeVec
	UnresolvedProfilesTotal prometheus.Counter
	EvacuationSeconds       prometheus.Histogram

	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	WebSocketClients    prometheus.Gauge

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with every metric initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.initGraphMetrics()
	r.initRoutingMetrics()
	r.initSimMetrics()
	r.initHTTPMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
