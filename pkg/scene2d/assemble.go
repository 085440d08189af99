// Package scene2d projects one level onto the floor plane for top-down
// rendering.
package scene2d

import (
	"fmt"
	"math"
	"time"

	"github.com/Jancidakis/nasa-pathfinding/pkg/building"
	"github.com/Jancidakis/nasa-pathfinding/pkg/geo"
	"github.com/Jancidakis/nasa-pathfinding/pkg/navgraph"
	"github.com/Jancidakis/nasa-pathfinding/pkg/routing"
	"github.com/Jancidakis/nasa-pathfinding/pkg/scene"
)

// Assemble2D builds the floor plan of level li. g and egress may be nil, in
// which case the plan carries no walkable links or egress figures.
func Assemble2D(b *building.Building, li int, g *navgraph.Graph, egress *routing.Analysis) (*Plan, error) {
	if li < 0 || li >= len(b.Levels) {
		return nil, fmt.Errorf("level %d out of range", li)
	}
	lvl := b.Levels[li]

	p := &Plan{
		Metadata: Metadata{
			Building:    b.Name,
			Level:       lvl.Name,
			LevelIndex:  li,
			Elevation:   lvl.Elevation,
			AreaCount:   len(lvl.Areas),
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
		Areas:  assembleAreas(li, lvl, egress),
		Doors:  assembleDoors(li, lvl, g),
		Stairs: assembleStairs(li, lvl),
		Paths:  assemblePaths(g),
		Agents: []Agent2D{},
	}
	for _, a := range lvl.Areas {
		if !a.Positioned() {
			p.Metadata.UngraphedAreas = append(p.Metadata.UngraphedAreas, a.Name)
		}
	}
	if egress != nil {
		p.Metadata.MaxEgress = egress.MaxDistance
	}
	p.Metadata.BoundsMin, p.Metadata.BoundsMax = bounds(p)
	return p, nil
}

// PlaceAgents replaces the plan's agent markers with the agents of states
// that stand on the plan's level.
func (p *Plan) PlaceAgents(states []scene.AgentState) {
	p.Agents = []Agent2D{}
	for _, st := range states {
		if st.Level != p.Metadata.LevelIndex {
			continue
		}
		p.Agents = append(p.Agents, Agent2D{
			ID:        st.ID,
			ProfileID: st.ProfileID,
			Position:  [2]float64{st.Position.X, st.Position.Z},
			State:     st.State,
			Color:     st.Color,
		})
	}
}

func assembleAreas(li int, lvl building.Level, egress *routing.Analysis) []Area2D {
	byIndex := map[int]routing.AreaEgress{}
	if egress != nil {
		for _, e := range egress.Areas {
			byIndex[e.AreaIndex] = e
		}
	}

	areas := []Area2D{}
	for ai, a := range lvl.Areas {
		if !a.Positioned() {
			continue
		}
		fp := a.Footprint()
		area := Area2D{
			ID:       fmt.Sprintf("l%d-a%d", li, ai),
			Name:     a.Name,
			Center:   coord(a.Position.Point()),
			Boundary: polygonToCoords(fp),
			AreaM2:   fp.Area(),
		}
		if a.Surface != nil {
			area.SurfaceM2 = *a.Surface
		}
		if e, ok := byIndex[ai]; ok && e.Reachable {
			area.Reachable = true
			area.EgressM = e.Distance
		}
		areas = append(areas, area)
	}
	return areas
}

func assembleDoors(li int, lvl building.Level, g *navgraph.Graph) []Door2D {
	doors := []Door2D{}
	for ai, a := range lvl.Areas {
		if !a.Positioned() {
			continue
		}
		for di, d := range a.Doors {
			var pos geo.Point2D
			switch {
			case g != nil && g.DoorNode(ai, di) >= 0:
				pos = g.Nodes[g.DoorNode(ai, di)].Position.Plan()
			case d.Position != nil:
				pos = d.Position.Point()
			default:
				pos = navgraph.SynthesizeDoor(a, di, 0).Plan()
			}
			doors = append(doors, Door2D{
				ID:       fmt.Sprintf("l%d-a%d-d%d", li, ai, di),
				AreaID:   fmt.Sprintf("l%d-a%d", li, ai),
				Label:    d.Label(a.Name, di),
				Position: coord(pos),
				Width:    d.Width,
				Exit:     d.IsExit,
			})
		}
	}
	return doors
}

func assembleStairs(li int, lvl building.Level) []Stair2D {
	stairs := []Stair2D{}
	for si, s := range lvl.Stairs {
		if s.Position == nil {
			continue
		}
		stairs = append(stairs, Stair2D{
			ID:       fmt.Sprintf("l%d-s%d", li, si),
			Name:     s.Name,
			Position: coord(s.Position.Point()),
			ToLevel:  s.ToLevel,
		})
	}
	return stairs
}

// assemblePaths emits every undirected link once, lower node first.
func assemblePaths(g *navgraph.Graph) []Path2D {
	paths := []Path2D{}
	if g == nil {
		return paths
	}
	for u := range g.Nodes {
		for _, v := range g.Neighbors(u) {
			if v <= u {
				continue
			}
			paths = append(paths, Path2D{
				Start:  coord(g.Nodes[u].Position.Plan()),
				End:    coord(g.Nodes[v].Position.Plan()),
				Length: g.EdgeLength(u, v),
				Exit:   g.Nodes[u].IsExit || g.Nodes[v].IsExit,
			})
		}
	}
	return paths
}

func bounds(p *Plan) ([2]float64, [2]float64) {
	lo := [2]float64{math.Inf(1), math.Inf(1)}
	hi := [2]float64{math.Inf(-1), math.Inf(-1)}
	grow := func(c [2]float64) {
		lo[0], lo[1] = math.Min(lo[0], c[0]), math.Min(lo[1], c[1])
		hi[0], hi[1] = math.Max(hi[0], c[0]), math.Max(hi[1], c[1])
	}
	for _, a := range p.Areas {
		for _, c := range a.Boundary {
			grow(c)
		}
	}
	for _, d := range p.Doors {
		grow(d.Position)
	}
	for _, s := range p.Stairs {
		grow(s.Position)
	}
	if math.IsInf(lo[0], 1) {
		return [2]float64{}, [2]float64{}
	}
	return lo, hi
}

func coord(pt geo.Point2D) [2]float64 {
	return [2]float64{pt.X, pt.Z}
}

// polygonToCoords converts a geo.Polygon to a [][2]float64 coordinate list.
func polygonToCoords(p geo.Polygon) [][2]float64 {
	coords := make([][2]float64, len(p.Vertices))
	for i, v := range p.Vertices {
		coords[i] = [2]float64{v.X, v.Z}
	}
	return coords
}
