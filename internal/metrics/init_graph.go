package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphBuildsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "evacsim_graph_builds_total",
			Help: "Total number of navigation graphs built",
		},
	)

	r.GraphBuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evacsim_graph_build_duration_seconds",
			Help:    "Navigation graph build duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)

	r.GraphNodes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "evacsim_graph_nodes",
			Help: "Node count of the most recent graph per level",
		},
		[]string{"level"},
	)

	r.SkippedAreasTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "evacsim_graph_skipped_areas_total",
			Help: "Areas left out of a graph for lack of position",
		},
	)

	r.UnresolvedConnectionsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "evacsim_graph_unresolved_connections_total",
			Help: "Door connections whose target area could not be linked",
		},
	)

	r.AmbiguousConnectionsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "evacsim_graph_ambiguous_connections_total",
			Help: "Door connections that matched more than one area",
		},
	)
}

func (r *Registry) initRoutingMetrics() {
	r.PathSearchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "evacsim_path_searches_total",
			Help: "Total number of path searches",
		},
		[]string{"result"},
	)

	r.PathFallbacksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "evacsim_path_fallbacks_total",
			Help: "Path searches that degraded to a straight line",
		},
		[]string{"reason"},
	)

	r.PathSearchDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evacsim_path_search_duration_seconds",
			Help:    "Path search duration in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
	)

	r.AgentsWithoutExitTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "evacsim_agents_without_exit_total",
			Help: "Agents left without a path because their level has no exit",
		},
	)
}
