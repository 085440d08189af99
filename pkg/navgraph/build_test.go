package navgraph

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Jancidakis/nasa-pathfinding/pkg/building"
	"github.com/Jancidakis/nasa-pathfinding/pkg/geo"
)

func f(v float64) *float64 { return &v }

// twoRooms is SALA (exit) next to COCINA, whose door leads into SALA.
func twoRooms() building.Level {
	return building.Level{
		Name:      "ground",
		Elevation: 0,
		Areas: []building.Area{
			{
				Name: "SALA", Width: f(2), Length: f(2), Position: building.C(0, 0),
				Doors: []building.Door{{Name: "salida", Width: 0.9, IsExit: true}},
			},
			{
				Name: "COCINA", Width: f(2), Length: f(2), Position: building.C(3, 0),
				Doors: []building.Door{{Width: 0.8, ConnectsTo: "SALA"}},
			},
		},
	}
}

func TestBuildTwoRooms(t *testing.T) {
	g, report := Build(twoRooms())

	if len(g.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(g.Nodes))
	}
	if len(g.Edges) != 4 {
		t.Errorf("expected 4 adjacency entries, got %d: %v", len(g.Edges), g.Edges)
	}
	if g.EdgeCount() != 3 {
		t.Errorf("expected 3 undirected links, got %d", g.EdgeCount())
	}
	if !report.Valid || len(report.Warnings) != 0 {
		t.Errorf("expected clean report, got %s: %v", report.Summary, report.Warnings)
	}

	// Area centers first, index-aligned.
	if g.Nodes[0].IsDoor || g.Nodes[0].Label != "SALA" {
		t.Errorf("node 0 = %+v, want SALA center", g.Nodes[0])
	}
	if g.Nodes[1].IsDoor || g.Nodes[1].Label != "COCINA" {
		t.Errorf("node 1 = %+v, want COCINA center", g.Nodes[1])
	}
	if g.Nodes[0].Position != geo.V3(0, 0.5, 0) {
		t.Errorf("SALA center at %v, want (0,0.5,0)", g.Nodes[0].Position)
	}

	exit := g.DoorNode(0, 0)
	inner := g.DoorNode(1, 0)
	if exit != 2 || inner != 3 {
		t.Fatalf("door nodes = %d, %d, want 2, 3", exit, inner)
	}
	if !g.Nodes[exit].IsExit || !g.Nodes[exit].IsDoor {
		t.Errorf("exit node flags wrong: %+v", g.Nodes[exit])
	}
	if g.Nodes[inner].IsExit {
		t.Error("inner door flagged as exit")
	}

	for _, e := range [][2]int{{exit, 0}, {inner, 1}, {inner, 0}} {
		if !g.HasEdge(e[0], e[1]) || !g.HasEdge(e[1], e[0]) {
			t.Errorf("missing link %d-%d", e[0], e[1])
		}
	}
	if len(g.Neighbors(exit)) != 1 {
		t.Errorf("exit door should be a dead end, neighbors = %v", g.Neighbors(exit))
	}
	if g.HasEdge(0, 1) {
		t.Error("area centers must only connect through doors")
	}
}

func TestBuildSynthesizedDoorPositions(t *testing.T) {
	lvl := building.Level{
		Elevation: 3,
		Areas: []building.Area{{
			Name: "HALL", Width: f(4), Length: f(2), Position: building.C(10, 5),
			Doors: []building.Door{{Width: 1}, {Width: 1}, {Width: 1, Position: building.C(8, 5)}},
		}},
	}
	g, _ := Build(lvl)

	// Three doors: fractions 1/4, 2/4, 3/4 across x in [8, 12], z on the far edge.
	want := map[int]geo.Vec3{
		0: geo.V3(9, 3.5, 6),
		1: geo.V3(10, 3.5, 6),
		2: geo.V3(8, 3.5, 5),
	}
	for di, pos := range want {
		got := g.Nodes[g.DoorNode(0, di)].Position
		if geo.Distance3(got, pos) > 1e-9 {
			t.Errorf("door %d at %v, want %v", di, got, pos)
		}
	}
	if g.Stats.SynthesizedDoors != 2 {
		t.Errorf("SynthesizedDoors = %d, want 2", g.Stats.SynthesizedDoors)
	}
}

func TestBuildDefaultAreaSize(t *testing.T) {
	a := building.Area{Name: "X", Position: building.C(0, 0), Doors: []building.Door{{}}}
	got := SynthesizeDoor(a, 0, 0.5)
	want := geo.V3(0, 0.5, building.DefaultAreaSize/2)
	if got != want {
		t.Errorf("SynthesizeDoor = %v, want %v", got, want)
	}
}

func TestBuildEmptyLevel(t *testing.T) {
	lvl := building.Level{Name: "void", Areas: []building.Area{
		{Name: "A", Doors: []building.Door{{IsExit: true}}},
		{Name: "B"},
	}}
	g, report := Build(lvl)
	if len(g.Nodes) != 0 {
		t.Errorf("expected no nodes, got %d", len(g.Nodes))
	}
	if len(g.Edges) != 0 {
		t.Errorf("expected no edges, got %v", g.Edges)
	}
	if !g.Empty() {
		t.Error("Empty() should be true")
	}
	if len(report.Warnings) == 0 {
		t.Error("expected warnings for an ungraphable level")
	}

	g, _ = Build(building.Level{})
	if len(g.Nodes) != 0 || !g.Empty() {
		t.Error("level without areas should build an empty graph")
	}
}

func TestBuildSkipsUnpositionedArea(t *testing.T) {
	lvl := twoRooms()
	lvl.Areas = append([]building.Area{{
		Name:  "TRASTERO",
		Doors: []building.Door{{ConnectsTo: "SALA"}},
	}}, lvl.Areas...)
	lvl.Areas[2].Doors[0].ConnectsTo = "trastero"

	g, report := Build(lvl)

	if g.AreaNode(0) != -1 {
		t.Error("unpositioned area should not have a node")
	}
	if !g.Nodes[0].Ungraphed {
		t.Error("slot 0 should be ungraphed")
	}
	if g.AreaNode(1) != 1 || g.Nodes[1].Label != "SALA" {
		t.Errorf("SALA should keep index 1, got %+v", g.Nodes[1])
	}
	if g.AreaNode(2) != 2 || g.Nodes[2].Label != "COCINA" {
		t.Errorf("COCINA should keep index 2, got %+v", g.Nodes[2])
	}
	if len(g.Edges[0]) != 0 {
		t.Errorf("ungraphed slot has edges: %v", g.Edges[0])
	}
	if g.Stats.SkippedAreas != 1 {
		t.Errorf("SkippedAreas = %d, want 1", g.Stats.SkippedAreas)
	}
	// COCINA's door pointed at the unpositioned area.
	if g.Stats.UnresolvedConnections != 1 {
		t.Errorf("UnresolvedConnections = %d, want 1", g.Stats.UnresolvedConnections)
	}
	if len(report.Find("areas[0].position")) == 0 {
		t.Error("expected a finding for the skipped area")
	}
	if g.Nearest(geo.V3(0, 0.5, 0)) == 0 {
		t.Error("Nearest must not return an ungraphed slot")
	}
}

func TestBuildUnresolvedConnection(t *testing.T) {
	lvl := twoRooms()
	lvl.Areas[1].Doors[0].ConnectsTo = "GARAJE"
	g, report := Build(lvl)

	inner := g.DoorNode(1, 0)
	if len(g.Neighbors(inner)) != 1 {
		t.Errorf("unresolved door should only link to its own area, got %v", g.Neighbors(inner))
	}
	if g.Stats.UnresolvedConnections != 1 {
		t.Errorf("UnresolvedConnections = %d, want 1", g.Stats.UnresolvedConnections)
	}
	if !report.Valid {
		t.Error("unresolved connection must not invalidate the report")
	}
}

func TestBuildAmbiguousConnection(t *testing.T) {
	lvl := twoRooms()
	lvl.Areas = append(lvl.Areas, building.Area{Name: "SALA DE ESTAR", Position: building.C(0, 5)})

	var calls []DoorRef
	var got []string
	g, report := Build(lvl, WithPath("levels[0]"), WithAmbiguityHook(func(d DoorRef, candidates []string) {
		calls = append(calls, d)
		got = candidates
	}))

	if len(calls) != 1 {
		t.Fatalf("hook called %d times, want 1", len(calls))
	}
	if calls[0].Area != "COCINA" || calls[0].ConnectsTo != "SALA" {
		t.Errorf("hook door = %+v", calls[0])
	}
	if len(got) != 2 || got[0] != "SALA" || got[1] != "SALA DE ESTAR" {
		t.Errorf("candidates = %v", got)
	}
	// First match wins.
	inner := g.DoorNode(1, 0)
	if !g.HasEdge(inner, 0) || g.HasEdge(inner, 2) {
		t.Errorf("door should link to SALA only, neighbors = %v", g.Neighbors(inner))
	}
	if len(report.Find("levels[0].areas[1].doors[0].connects_to")) != 1 {
		t.Errorf("expected one ambiguity finding, got %v", report.Warnings)
	}
}

func TestBuildExitIgnoresConnectsTo(t *testing.T) {
	lvl := twoRooms()
	lvl.Areas[0].Doors[0].ConnectsTo = "COCINA"
	g, _ := Build(lvl)
	exit := g.DoorNode(0, 0)
	if len(g.Neighbors(exit)) != 1 || g.Neighbors(exit)[0] != 0 {
		t.Errorf("exit door neighbors = %v, want [0]", g.Neighbors(exit))
	}
}

func TestBuildAllExample(t *testing.T) {
	b, err := building.LoadProject("../../examples/office")
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	graphs, report := BuildAll(b)
	if len(graphs) != len(b.Levels) {
		t.Fatalf("graphs = %d, want %d", len(graphs), len(b.Levels))
	}
	if graphs[0].Stats.SkippedAreas != 1 {
		t.Errorf("office: SkippedAreas = %d, want 1 (ARCHIVO)", graphs[0].Stats.SkippedAreas)
	}
	if graphs[0].Stats.AmbiguousConnections != 1 {
		t.Errorf("office: AmbiguousConnections = %d, want 1 (sala)", graphs[0].Stats.AmbiguousConnections)
	}
	if len(report.Find("levels[0].areas[4].position")) == 0 {
		t.Error("expected level-prefixed finding for ARCHIVO")
	}
}

// randomLevel builds a level with random geometry and connectivity from seed.
func randomLevel(seed int64) building.Level {
	rng := rand.New(rand.NewSource(seed))
	n := rng.Intn(8)
	lvl := building.Level{Name: fmt.Sprintf("L%d", seed), Elevation: float64(rng.Intn(3)) * 3}
	for i := 0; i < n; i++ {
		a := building.Area{Name: fmt.Sprintf("ROOM%d", i)}
		if rng.Float64() < 0.8 {
			a.Position = building.C(rng.Float64()*30, rng.Float64()*30)
			a.Width = f(1 + rng.Float64()*5)
		}
		for d := rng.Intn(4); d > 0; d-- {
			door := building.Door{Width: 0.9}
			switch rng.Intn(4) {
			case 0:
				door.IsExit = true
			case 1:
				door.ConnectsTo = "NOWHERE"
			default:
				door.ConnectsTo = fmt.Sprintf("room%d", rng.Intn(n))
			}
			if rng.Intn(2) == 0 && a.Position != nil {
				door.Position = building.C(a.Position[0]+rng.Float64(), a.Position[1])
			}
			a.Doors = append(a.Doors, door)
		}
		lvl.Areas = append(lvl.Areas, a)
	}
	return lvl
}

func TestGraphInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every edge is present in both directions", prop.ForAll(
		func(seed int64) bool {
			g, _ := Build(randomLevel(seed))
			for u, ns := range g.Edges {
				for _, v := range ns {
					if !g.HasEdge(v, u) {
						return false
					}
				}
			}
			return true
		},
		gen.Int64(),
	))

	properties.Property("area node index equals area index", prop.ForAll(
		func(seed int64) bool {
			lvl := randomLevel(seed)
			g, _ := Build(lvl)
			if g.Empty() {
				return true
			}
			for i, a := range lvl.Areas {
				if a.Positioned() != (g.AreaNode(i) == i) {
					return false
				}
				if a.Positioned() && g.Nodes[i].Label != a.Name {
					return false
				}
			}
			return true
		},
		gen.Int64(),
	))

	properties.Property("nodes sit at waist height and exits are dead ends", prop.ForAll(
		func(seed int64) bool {
			lvl := randomLevel(seed)
			g, _ := Build(lvl)
			for i, n := range g.Nodes {
				if n.Ungraphed {
					if len(g.Edges[i]) != 0 {
						return false
					}
					continue
				}
				if math.Abs(n.Position.Y-lvl.NavHeight()) > 1e-12 {
					return false
				}
				if n.IsExit && len(g.Edges[i]) != 1 {
					return false
				}
			}
			return true
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}
