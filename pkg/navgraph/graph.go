// Package navgraph turns one level's rooms and doors into an undirected graph
// of area-center and door nodes weighted by straight-line distance.
package navgraph

import (
	"encoding/json"
	"math"

	"github.com/Jancidakis/nasa-pathfinding/pkg/geo"
)

// Node is a graph vertex: an area center or a door.
type Node struct {
	Position  geo.Vec3 `json:"position"`
	IsDoor    bool     `json:"is_door"`
	IsExit    bool     `json:"is_exit"`
	Ungraphed bool     `json:"ungraphed,omitempty"` // slot held for an area without position
	AreaIndex int      `json:"area_index"`
	DoorIndex int      `json:"door_index"` // -1 for area-center nodes
	Label     string   `json:"label"`
}

// MarshalJSON leaves the position out of ungraphed slots so renderers do not
// draw them at the origin.
func (n Node) MarshalJSON() ([]byte, error) {
	type plain Node
	if !n.Ungraphed {
		return json.Marshal(plain(n))
	}
	return json.Marshal(struct {
		plain
		Position *geo.Vec3 `json:"position,omitempty"`
	}{plain: plain(n)})
}

// Stats counts what the builder produced and what it had to skip.
type Stats struct {
	AreaNodes             int `json:"area_nodes"`
	DoorNodes             int `json:"door_nodes"`
	SkippedAreas          int `json:"skipped_areas"`
	SynthesizedDoors      int `json:"synthesized_doors"`
	UnresolvedConnections int `json:"unresolved_connections"`
	AmbiguousConnections  int `json:"ambiguous_connections"`
}

// Graph is the navigation graph for a single level. Area-center node i
// belongs to area i of the level. A Graph is never modified after Build
// returns, so it may be shared by concurrent readers.
type Graph struct {
	Level     string        `json:"level"`
	Elevation float64       `json:"elevation"`
	Nodes     []Node        `json:"nodes"`
	Edges     map[int][]int `json:"edges"`
	Stats     Stats         `json:"stats"`

	doorNodes map[[2]int]int
}

// Empty reports whether the graph has no routable node.
func (g *Graph) Empty() bool {
	if g == nil {
		return true
	}
	for _, n := range g.Nodes {
		if !n.Ungraphed {
			return false
		}
	}
	return true
}

// Neighbors returns the sorted neighbor indices of node i.
func (g *Graph) Neighbors(i int) []int {
	return g.Edges[i]
}

// HasEdge reports whether u and v are adjacent.
func (g *Graph) HasEdge(u, v int) bool {
	for _, n := range g.Edges[u] {
		if n == v {
			return true
		}
	}
	return false
}

// EdgeCount returns the number of undirected links.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, ns := range g.Edges {
		total += len(ns)
	}
	return total / 2
}

// AreaNode returns the node index of area i, or -1 when the area is not in
// the graph.
func (g *Graph) AreaNode(i int) int {
	if i < 0 || i >= len(g.Nodes) || g.Nodes[i].IsDoor || g.Nodes[i].Ungraphed {
		return -1
	}
	return i
}

// DoorNode returns the node index of door d in area a, or -1.
func (g *Graph) DoorNode(a, d int) int {
	if idx, ok := g.doorNodes[[2]int{a, d}]; ok {
		return idx
	}
	return -1
}

// Nearest returns the routable node closest to p. Ties go to the lowest
// index. Returns -1 for an empty graph.
func (g *Graph) Nearest(p geo.Vec3) int {
	best := -1
	bestDist := math.Inf(1)
	for i, n := range g.Nodes {
		if n.Ungraphed {
			continue
		}
		if d := geo.Distance3(p, n.Position); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// EdgeLength returns the weight of the link between u and v.
func (g *Graph) EdgeLength(u, v int) float64 {
	return geo.Distance3(g.Nodes[u].Position, g.Nodes[v].Position)
}
