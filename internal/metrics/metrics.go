package metrics

import (
	"time"

	"github.com/Jancidakis/nasa-pathfinding/pkg/navgraph"
)

// RecordGraphBuild records one graph build and its degradation counts.
func (r *Registry) RecordGraphBuild(g *navgraph.Graph, duration time.Duration) {
	if r == nil || g == nil {
		return
	}
	r.GraphBuildsTotal.Inc()
	r.GraphBuildDuration.Observe(duration.Seconds())
	r.GraphNodes.WithLabelValues(g.Level).Set(float64(g.Stats.AreaNodes + g.Stats.DoorNodes))
	r.SkippedAreasTotal.Add(float64(g.Stats.SkippedAreas))
	r.UnresolvedConnectionsTotal.Add(float64(g.Stats.UnresolvedConnections))
	r.AmbiguousConnectionsTotal.Add(float64(g.Stats.AmbiguousConnections))
}

// RecordPathSearch records a search outcome. An empty fallback reason means
// the graph route succeeded.
func (r *Registry) RecordPathSearch(fallback string, duration time.Duration) {
	if r == nil {
		return
	}
	r.PathSearchDuration.Observe(duration.Seconds())
	if fallback == "" {
		r.PathSearchesTotal.WithLabelValues("ok").Inc()
		return
	}
	r.PathSearchesTotal.WithLabelValues("fallback").Inc()
	r.PathFallbacksTotal.WithLabelValues(fallback).Inc()
}

// RecordNoExit counts an agent that could not be given a route.
func (r *Registry) RecordNoExit() {
	if r == nil {
		return
	}
	r.AgentsWithoutExitTotal.Inc()
}

// RecordTick records one simulation step.
func (r *Registry) RecordTick(duration time.Duration, unresolvedProfiles int) {
	if r == nil {
		return
	}
	r.TicksTotal.Inc()
	r.TickDuration.Observe(duration.Seconds())
	r.UnresolvedProfilesTotal.Add(float64(unresolvedProfiles))
}

// RecordEvacuated observes the simulated time an agent needed to get out.
func (r *Registry) RecordEvacuated(elapsed float64) {
	if r == nil {
		return
	}
	r.EvacuationSeconds.Observe(elapsed)
}

// SetAgentCounts updates the per-state agent gauge.
func (r *Registry) SetAgentCounts(idle, evacuating, evacuated int) {
	if r == nil {
		return
	}
	r.Agents.WithLabelValues("idle").Set(float64(idle))
	r.Agents.WithLabelValues("evacuating").Set(float64(evacuating))
	r.Agents.WithLabelValues("evacuated").Set(float64(evacuated))
}

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// SetWebSocketClients sets the connected stream client count.
func (r *Registry) SetWebSocketClients(n int) {
	if r == nil {
		return
	}
	r.WebSocketClients.Set(float64(n))
}
