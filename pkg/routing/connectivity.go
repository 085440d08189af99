package routing

import (
	"sort"

	"github.com/Jancidakis/nasa-pathfinding/pkg/navgraph"
)

// Components partitions the routable nodes of g into connected components.
// Each component is sorted, and components are ordered by their lowest node,
// so the output is deterministic. Ungraphed placeholder slots are left out.
func Components(g *navgraph.Graph) [][]int {
	if g == nil {
		return nil
	}
	seen := make([]bool, len(g.Nodes))
	var comps [][]int
	for start, n := range g.Nodes {
		if n.Ungraphed || seen[start] {
			continue
		}
		comp := []int{start}
		seen[start] = true
		for queue := []int{start}; len(queue) > 0; queue = queue[1:] {
			for _, nb := range g.Neighbors(queue[0]) {
				if !seen[nb] {
					seen[nb] = true
					comp = append(comp, nb)
					queue = append(queue, nb)
				}
			}
		}
		sort.Ints(comp)
		comps = append(comps, comp)
	}
	return comps
}
