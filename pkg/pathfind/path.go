// Package pathfind locates exits and computes routes over a level's
// navigation graph.
package pathfind

import (
	"math"

	"github.com/Jancidakis/nasa-pathfinding/pkg/building"
	"github.com/Jancidakis/nasa-pathfinding/pkg/geo"
	"github.com/Jancidakis/nasa-pathfinding/pkg/navgraph"
)

const (
	// LevelTolerance is how far a point's height may be from a level's
	// navigation height and still be considered on that level.
	LevelTolerance = 1.5
	// FallbackSteps is the number of segments in a straight-line fallback.
	FallbackSteps = 10
)

// Fallback names why a route degraded to a straight line.
type Fallback string

const (
	FallbackNone       Fallback = ""
	FallbackNoLevel    Fallback = "no_level"
	FallbackEmptyGraph Fallback = "empty_graph"
	FallbackNoPath     Fallback = "no_path"
)

// Route is the result of a search. Waypoints is never empty.
type Route struct {
	Waypoints []geo.Vec3 `json:"waypoints"`
	Nodes     []int      `json:"nodes,omitempty"`
	Level     int        `json:"level"`
	Length    float64    `json:"length"`
	Fallback  Fallback   `json:"fallback,omitempty"`
}

var distance = geo.Distance3

// LevelAt returns the index of the first level whose navigation height is
// within LevelTolerance of y, or -1.
func LevelAt(b *building.Building, y float64) int {
	if b == nil {
		return -1
	}
	for i, lvl := range b.Levels {
		if math.Abs(lvl.NavHeight()-y) <= LevelTolerance {
			return i
		}
	}
	return -1
}

// Search routes from start to goal. g is used when non-nil; otherwise the
// graph for start's level is built on the fly. Every failure yields a
// straight-line route between start and goal with Fallback set.
func Search(start, goal geo.Vec3, b *building.Building, g *navgraph.Graph) Route {
	li := LevelAt(b, start.Y)
	if li < 0 {
		return fallbackRoute(start, goal, li, FallbackNoLevel)
	}
	if g == nil {
		g, _ = navgraph.Build(b.Levels[li])
	}
	if g.Empty() {
		return fallbackRoute(start, goal, li, FallbackEmptyGraph)
	}

	from := g.Nearest(start)
	to := g.Nearest(goal)
	nodes, ok := AStar(g, from, to)
	if !ok {
		return fallbackRoute(start, goal, li, FallbackNoPath)
	}

	pts := make([]geo.Vec3, 0, len(nodes)+2)
	pts = append(pts, start)
	for _, n := range nodes {
		pts = append(pts, g.Nodes[n].Position)
	}
	pts = append(pts, goal)
	return Route{
		Waypoints: pts,
		Nodes:     nodes,
		Level:     li,
		Length:    geo.PathLength(pts),
	}
}

// FindPath returns the waypoints of Search. The result is never empty.
func FindPath(start, goal geo.Vec3, b *building.Building, g *navgraph.Graph) []geo.Vec3 {
	return Search(start, goal, b, g).Waypoints
}

func fallbackRoute(start, goal geo.Vec3, level int, reason Fallback) Route {
	pts := geo.LerpPath(start, goal, FallbackSteps)
	return Route{
		Waypoints: pts,
		Level:     level,
		Length:    geo.PathLength(pts),
		Fallback:  reason,
	}
}
