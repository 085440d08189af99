package pathfind

import (
	"container/heap"
	"math"

	"github.com/Jancidakis/nasa-pathfinding/pkg/navgraph"
)

type frontierItem struct {
	node int
	f    float64
}

// frontier is a min-heap on f with ties broken by lowest node index.
type frontier []frontierItem

func (q frontier) Len() int { return len(q) }
func (q frontier) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].node < q[j].node
}
func (q frontier) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *frontier) Push(x any)   { *q = append(*q, x.(frontierItem)) }
func (q *frontier) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// AStar searches g from node start to node goal with straight-line distance
// as both edge weight and heuristic. It returns the node sequence including
// both ends, or false when goal is unreachable.
func AStar(g *navgraph.Graph, start, goal int) ([]int, bool) {
	n := len(g.Nodes)
	if start < 0 || goal < 0 || start >= n || goal >= n {
		return nil, false
	}

	gScore := make([]float64, n)
	fScore := make([]float64, n)
	parent := make([]int, n)
	for i := range gScore {
		gScore[i] = math.Inf(1)
		fScore[i] = math.Inf(1)
		parent[i] = -1
	}
	goalPos := g.Nodes[goal].Position
	h := func(i int) float64 {
		return distance(g.Nodes[i].Position, goalPos)
	}

	gScore[start] = 0
	fScore[start] = h(start)
	open := &frontier{{node: start, f: fScore[start]}}

	for open.Len() > 0 {
		cur := heap.Pop(open).(frontierItem)
		if cur.f > fScore[cur.node] {
			continue // stale entry
		}
		if cur.node == goal {
			return reconstruct(parent, goal), true
		}
		for _, nb := range g.Neighbors(cur.node) {
			if g.Nodes[nb].Ungraphed {
				continue
			}
			tentative := gScore[cur.node] + g.EdgeLength(cur.node, nb)
			if tentative < gScore[nb] {
				gScore[nb] = tentative
				fScore[nb] = tentative + h(nb)
				parent[nb] = cur.node
				heap.Push(open, frontierItem{node: nb, f: fScore[nb]})
			}
		}
	}
	return nil, false
}

func reconstruct(parent []int, goal int) []int {
	var rev []int
	for at := goal; at != -1; at = parent[at] {
		rev = append(rev, at)
	}
	out := make([]int, len(rev))
	for i, v := range rev {
		out[len(rev)-1-i] = v
	}
	return out
}
