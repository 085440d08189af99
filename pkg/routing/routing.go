// Package routing analyzes egress over navigation graphs: which areas can
// reach an exit door, how far the walk is, and which parts of a level are cut
// off from the others.
package routing

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/Jancidakis/nasa-pathfinding/pkg/building"
	"github.com/Jancidakis/nasa-pathfinding/pkg/navgraph"
	"github.com/Jancidakis/nasa-pathfinding/pkg/validation"
)

// AreaEgress is the egress situation of one positioned area.
type AreaEgress struct {
	AreaIndex int     `json:"area_index"`
	Area      string  `json:"area"`
	Reachable bool    `json:"reachable"`
	Distance  float64 `json:"distance,omitempty"` // graph distance from the area center
	Hops      int     `json:"hops,omitempty"`
	Exit      string  `json:"exit,omitempty"` // label of the closest exit door
}

// Analysis is the egress analysis of one level.
type Analysis struct {
	Level       string       `json:"level"`
	LevelIndex  int          `json:"level_index"`
	Exits       int          `json:"exits"`
	Components  int          `json:"components"`
	Unreachable int          `json:"unreachable"`
	MaxDistance float64      `json:"max_distance"`
	Areas       []AreaEgress `json:"areas"`
}

type item struct {
	node int
	dist float64
}

type queue []item

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}
func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x any)   { *q = append(*q, x.(item)) }
func (q *queue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}

// exitDistances runs a multi-source Dijkstra from every exit door node. It
// returns per-node distance (+Inf when cut off), hop count and the exit node
// each node drains to.
func exitDistances(g *navgraph.Graph) ([]float64, []int, []int) {
	n := len(g.Nodes)
	dist := make([]float64, n)
	hops := make([]int, n)
	source := make([]int, n)
	q := &queue{}
	for i := range dist {
		dist[i] = math.Inf(1)
		source[i] = -1
		if g.Nodes[i].IsExit {
			dist[i] = 0
			source[i] = i
			heap.Push(q, item{node: i})
		}
	}

	for q.Len() > 0 {
		cur := heap.Pop(q).(item)
		if cur.dist > dist[cur.node] {
			continue
		}
		for _, nb := range g.Neighbors(cur.node) {
			nd := cur.dist + g.EdgeLength(cur.node, nb)
			if nd < dist[nb] {
				dist[nb] = nd
				hops[nb] = hops[cur.node] + 1
				source[nb] = source[cur.node]
				heap.Push(q, item{node: nb, dist: nd})
			}
		}
	}
	return dist, hops, source
}

// Analyze computes egress for every positioned area of level li. Areas that
// cannot reach an exit door are reported as routing warnings; agents in them
// fall back to straight-line routes.
func Analyze(li int, lvl building.Level, g *navgraph.Graph) (*Analysis, *validation.Report) {
	report := validation.NewReport()
	a := &Analysis{Level: lvl.Name, LevelIndex: li, Areas: []AreaEgress{}}
	if g == nil {
		return a, report
	}

	comps := Components(g)
	a.Components = len(comps)
	for _, node := range g.Nodes {
		if node.IsExit {
			a.Exits++
		}
	}

	dist, hops, source := exitDistances(g)
	for ai, area := range lvl.Areas {
		node := g.AreaNode(ai)
		if node < 0 {
			continue
		}
		e := AreaEgress{AreaIndex: ai, Area: area.Name}
		if !math.IsInf(dist[node], 1) {
			e.Reachable = true
			e.Distance = dist[node]
			e.Hops = hops[node]
			e.Exit = g.Nodes[source[node]].Label
			a.MaxDistance = math.Max(a.MaxDistance, e.Distance)
		} else {
			a.Unreachable++
			if a.Exits > 0 {
				report.AddWarning(validation.Result{
					Level:       validation.LevelRouting,
					Message:     fmt.Sprintf("area %q has no door path to an exit; agents there walk a straight line", area.Name),
					Path:        fmt.Sprintf("levels[%d].areas[%d]", li, ai),
					Suggestions: []string{"add a door whose connects_to names a connected area"},
				})
			}
		}
		a.Areas = append(a.Areas, e)
	}

	if a.Components > 1 {
		report.AddInfo(validation.Result{
			Level:       validation.LevelRouting,
			Message:     fmt.Sprintf("level %q splits into %d disconnected parts", lvl.Name, a.Components),
			Path:        fmt.Sprintf("levels[%d]", li),
			ActualValue: a.Components,
		})
	}
	return a, report
}

// AnalyzeAll analyzes every level of b against its graph. graphs is indexed
// like b.Levels; a nil entry yields an empty analysis.
func AnalyzeAll(b *building.Building, graphs []*navgraph.Graph) ([]*Analysis, *validation.Report) {
	report := validation.NewReport()
	out := make([]*Analysis, len(b.Levels))
	for i, lvl := range b.Levels {
		var g *navgraph.Graph
		if i < len(graphs) {
			g = graphs[i]
		}
		a, r := Analyze(i, lvl, g)
		out[i] = a
		report.Merge(r)
	}
	return out, report
}
