package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimMetrics() {
	r.TicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "evacsim_ticks_total",
			Help: "Total number of simulation ticks",
		},
	)

	r.TickDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evacsim_tick_duration_seconds",
			Help:    "Wall time spent advancing all agents in one tick",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.05},
		},
	)

	r.Agents = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "evacsim_agents",
			Help: "Current number of agents by state",
		},
		[]string{"state"},
	)

	r.UnresolvedProfilesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "evacsim_unresolved_profiles_total",
			Help: "Agent advances skipped because the profile id is unknown",
		},
	)

	r.EvacuationSeconds = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evacsim_evacuation_seconds",
			Help:    "Simulated seconds from evacuation start to agent exit",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
	)
}
