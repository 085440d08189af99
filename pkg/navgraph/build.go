package navgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Jancidakis/nasa-pathfinding/pkg/building"
	"github.com/Jancidakis/nasa-pathfinding/pkg/geo"
	"github.com/Jancidakis/nasa-pathfinding/pkg/validation"
)

// DoorRef identifies a door whose connects_to matched more than one area.
type DoorRef struct {
	Area       string
	Door       string
	ConnectsTo string
}

// AmbiguityHook is called when connects_to matches several areas. The first
// candidate is the one that gets connected.
type AmbiguityHook func(door DoorRef, candidates []string)

type options struct {
	path        string
	onAmbiguous AmbiguityHook
}

// Option configures Build.
type Option func(*options)

// WithPath sets the report path prefix, e.g. "levels[2]".
func WithPath(path string) Option {
	return func(o *options) { o.path = path }
}

// WithAmbiguityHook registers a callback for ambiguous connects_to matches.
func WithAmbiguityHook(fn AmbiguityHook) Option {
	return func(o *options) { o.onAmbiguous = fn }
}

// Build constructs the navigation graph for one level. It never fails: areas
// without position and doors whose target cannot be resolved are left out and
// reported as warnings.
func Build(level building.Level, opts ...Option) (*Graph, *validation.Report) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	b := &builder{
		level:  level,
		opts:   o,
		report: validation.NewReport(),
		adj:    make(map[int]map[int]bool),
		g: &Graph{
			Level:     level.Name,
			Elevation: level.Elevation,
			Nodes:     []Node{},
			Edges:     map[int][]int{},
			doorNodes: make(map[[2]int]int),
		},
	}

	b.placeAreas()
	if b.g.Stats.AreaNodes == 0 {
		b.g.Nodes = []Node{}
		b.report.AddWarning(validation.Result{
			Level:   validation.LevelGraph,
			Message: fmt.Sprintf("level %q has no positioned areas; graph is empty", level.Name),
			Path:    b.path("areas"),
		})
		return b.g, b.report
	}
	b.placeDoors()
	b.connectDoors()
	b.finish()

	b.report.AddInfo(validation.Result{
		Level: validation.LevelGraph,
		Message: fmt.Sprintf("level %q: %d area nodes, %d door nodes, %d links (%d skipped areas, %d synthesized doors, %d unresolved, %d ambiguous)",
			level.Name, b.g.Stats.AreaNodes, b.g.Stats.DoorNodes, b.g.EdgeCount(),
			b.g.Stats.SkippedAreas, b.g.Stats.SynthesizedDoors,
			b.g.Stats.UnresolvedConnections, b.g.Stats.AmbiguousConnections),
		Path: b.path(""),
	})
	return b.g, b.report
}

// BuildAll builds one graph per level. The returned slice is index-aligned
// with b.Levels.
func BuildAll(b *building.Building, opts ...Option) ([]*Graph, *validation.Report) {
	report := validation.NewReport()
	graphs := make([]*Graph, len(b.Levels))
	for i, lvl := range b.Levels {
		levelOpts := append([]Option{WithPath(fmt.Sprintf("levels[%d]", i))}, opts...)
		g, r := Build(lvl, levelOpts...)
		graphs[i] = g
		report.Merge(r)
	}
	return graphs, report
}

type builder struct {
	level  building.Level
	opts   options
	report *validation.Report
	adj    map[int]map[int]bool
	g      *Graph
}

func (b *builder) path(suffix string) string {
	switch {
	case b.opts.path == "":
		return suffix
	case suffix == "":
		return b.opts.path
	default:
		return b.opts.path + "." + suffix
	}
}

// placeAreas fills one slot per area so that node i is area i.
func (b *builder) placeAreas() {
	y := b.level.NavHeight()
	for i, a := range b.level.Areas {
		if !a.Positioned() {
			b.g.Nodes = append(b.g.Nodes, Node{Ungraphed: true, AreaIndex: i, DoorIndex: -1, Label: a.Name})
			b.g.Stats.SkippedAreas++
			b.report.AddWarning(validation.Result{
				Level:   validation.LevelGraph,
				Message: fmt.Sprintf("area %q has no position; left out of the graph", a.Name),
				Path:    b.path(fmt.Sprintf("areas[%d].position", i)),
			})
			continue
		}
		b.g.Nodes = append(b.g.Nodes, Node{
			Position:  a.Position.Point().At(y),
			AreaIndex: i,
			DoorIndex: -1,
			Label:     a.Name,
		})
		b.g.Stats.AreaNodes++
	}
}

func (b *builder) placeDoors() {
	for ai, a := range b.level.Areas {
		if !a.Positioned() {
			continue
		}
		for di, d := range a.Doors {
			pos, synthesized := b.doorPosition(a, di)
			if synthesized {
				b.g.Stats.SynthesizedDoors++
			}
			idx := len(b.g.Nodes)
			b.g.Nodes = append(b.g.Nodes, Node{
				Position:  pos,
				IsDoor:    true,
				IsExit:    d.IsExit,
				AreaIndex: ai,
				DoorIndex: di,
				Label:     d.Label(a.Name, di),
			})
			b.g.doorNodes[[2]int{ai, di}] = idx
			b.g.Stats.DoorNodes++
			b.link(idx, ai)
		}
	}
}

// doorPosition returns the explicit door position, or spreads the area's doors
// evenly across its far edge (+Z half-length) when none is given.
func (b *builder) doorPosition(a building.Area, di int) (geo.Vec3, bool) {
	y := b.level.NavHeight()
	d := a.Doors[di]
	if d.Position != nil {
		return d.Position.Point().At(y), false
	}
	return SynthesizeDoor(a, di, y), true
}

// SynthesizeDoor places door di of a positioned area at fraction
// (di+1)/(n+1) along the area's width, on the edge half a length beyond the
// center.
func SynthesizeDoor(a building.Area, di int, y float64) geo.Vec3 {
	w, l := a.Size()
	c := a.Position.Point()
	frac := float64(di+1) / float64(len(a.Doors)+1)
	return geo.V3(c.X-w/2+w*frac, y, c.Z+l/2)
}

func (b *builder) connectDoors() {
	for ai, a := range b.level.Areas {
		if !a.Positioned() {
			continue
		}
		for di, d := range a.Doors {
			if d.IsExit || strings.TrimSpace(d.ConnectsTo) == "" {
				continue
			}
			door := b.g.doorNodes[[2]int{ai, di}]
			dpath := b.path(fmt.Sprintf("areas[%d].doors[%d].connects_to", ai, di))

			matches := b.level.MatchAreas(d.ConnectsTo)
			if len(matches) == 0 {
				b.g.Stats.UnresolvedConnections++
				b.report.AddWarning(validation.Result{
					Level:       validation.LevelGraph,
					Message:     fmt.Sprintf("door %s: connects_to %q matches no area", d.Label(a.Name, di), d.ConnectsTo),
					Path:        dpath,
					ActualValue: d.ConnectsTo,
				})
				continue
			}
			if len(matches) > 1 {
				b.ambiguous(a, di, d, matches, dpath)
			}

			target := matches[0]
			if !b.level.Areas[target].Positioned() {
				b.g.Stats.UnresolvedConnections++
				b.report.AddWarning(validation.Result{
					Level:       validation.LevelGraph,
					Message:     fmt.Sprintf("door %s: target area %q has no position", d.Label(a.Name, di), b.level.Areas[target].Name),
					Path:        dpath,
					ActualValue: d.ConnectsTo,
				})
				continue
			}
			b.link(door, target)
		}
	}
}

func (b *builder) ambiguous(a building.Area, di int, d building.Door, matches []int, path string) {
	b.g.Stats.AmbiguousConnections++
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = b.level.Areas[m].Name
	}
	b.report.AddWarning(validation.Result{
		Level:       validation.LevelGraph,
		Message:     fmt.Sprintf("door %s: connects_to %q matches %d areas (%s); using %q", d.Label(a.Name, di), d.ConnectsTo, len(matches), strings.Join(names, ", "), names[0]),
		Path:        path,
		ActualValue: d.ConnectsTo,
	})
	if b.opts.onAmbiguous != nil {
		b.opts.onAmbiguous(DoorRef{Area: a.Name, Door: d.Label(a.Name, di), ConnectsTo: d.ConnectsTo}, names)
	}
}

// link records an undirected edge.
func (b *builder) link(u, v int) {
	if u == v {
		return
	}
	if b.adj[u] == nil {
		b.adj[u] = make(map[int]bool)
	}
	if b.adj[v] == nil {
		b.adj[v] = make(map[int]bool)
	}
	b.adj[u][v] = true
	b.adj[v][u] = true
}

// finish converts adjacency sets to sorted slices for deterministic output.
func (b *builder) finish() {
	for u, set := range b.adj {
		ns := make([]int, 0, len(set))
		for v := range set {
			ns = append(ns, v)
		}
		sort.Ints(ns)
		b.g.Edges[u] = ns
	}
}
