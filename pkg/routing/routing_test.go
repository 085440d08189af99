package routing

import (
	"math"
	"testing"

	"github.com/Jancidakis/nasa-pathfinding/pkg/building"
	"github.com/Jancidakis/nasa-pathfinding/pkg/navgraph"
)

func f(v float64) *float64 { return &v }

// twoRooms is SALA (exit) next to COCINA, whose door leads into SALA.
func twoRooms() building.Level {
	return building.Level{
		Name: "ground",
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

func analyze(t *testing.T, lvl building.Level) *Analysis {
	t.Helper()
	g, _ := navgraph.Build(lvl)
	a, _ := Analyze(0, lvl, g)
	return a
}

func TestAnalyzeTwoRooms(t *testing.T) {
	lvl := twoRooms()
	g, _ := navgraph.Build(lvl)
	a, report := Analyze(0, lvl, g)

	if a.Exits != 1 || a.Components != 1 || a.Unreachable != 0 {
		t.Errorf("analysis = %+v", a)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", report.Warnings)
	}
	if len(a.Areas) != 2 {
		t.Fatalf("areas = %d, want 2", len(a.Areas))
	}

	sala := a.Areas[0]
	if !sala.Reachable || sala.Hops != 1 || math.Abs(sala.Distance-1) > 1e-9 || sala.Exit != "salida" {
		t.Errorf("SALA egress = %+v", sala)
	}
	// COCINA -> its door (1m) -> SALA center (sqrt 10) -> exit door (1m).
	cocina := a.Areas[1]
	want := 2 + math.Sqrt(10)
	if !cocina.Reachable || cocina.Hops != 3 || math.Abs(cocina.Distance-want) > 1e-9 {
		t.Errorf("COCINA egress = %+v, want distance %.4f over 3 hops", cocina, want)
	}
	if math.Abs(a.MaxDistance-want) > 1e-9 {
		t.Errorf("MaxDistance = %f, want %f", a.MaxDistance, want)
	}
}

func TestAnalyzeCutOffArea(t *testing.T) {
	lvl := twoRooms()
	lvl.Areas = append(lvl.Areas, building.Area{Name: "BODEGA", Position: building.C(10, 10)})
	g, _ := navgraph.Build(lvl)
	a, report := Analyze(2, lvl, g)

	if a.Components != 2 {
		t.Errorf("Components = %d, want 2", a.Components)
	}
	if a.Unreachable != 1 || a.Areas[2].Reachable {
		t.Errorf("BODEGA should be unreachable: %+v", a.Areas[2])
	}
	if len(report.Find("levels[2].areas[2]")) != 1 {
		t.Errorf("expected routing warning for BODEGA, got %+v", report.Warnings)
	}
	if len(report.Find("levels[2]")) != 1 {
		t.Error("expected disconnected-parts info")
	}
	if !report.Valid {
		t.Error("egress findings must not invalidate the report")
	}
}

func TestAnalyzeLevelWithoutExit(t *testing.T) {
	lvl := building.Level{Name: "attic", Areas: []building.Area{{Name: "DESVAN", Position: building.C(0, 0)}}}
	g, _ := navgraph.Build(lvl)
	a, report := Analyze(0, lvl, g)

	if a.Exits != 0 || a.Unreachable != 1 {
		t.Errorf("analysis = %+v", a)
	}
	// The missing exit itself is a schema finding; no per-area noise.
	if len(report.Warnings) != 0 {
		t.Errorf("warnings = %+v, want none", report.Warnings)
	}
}

func TestAnalyzeSkipsUnpositionedAreas(t *testing.T) {
	lvl := twoRooms()
	lvl.Areas = append([]building.Area{{Name: "TRASTERO"}}, lvl.Areas...)

	a := analyze(t, lvl)
	if len(a.Areas) != 2 {
		t.Fatalf("areas = %d, want 2 positioned", len(a.Areas))
	}
	if a.Areas[0].AreaIndex != 1 || a.Areas[0].Area != "SALA" {
		t.Errorf("first analyzed area = %+v, want SALA at index 1", a.Areas[0])
	}
}

func TestAnalyzeNilGraph(t *testing.T) {
	a, report := Analyze(0, twoRooms(), nil)
	if len(a.Areas) != 0 || !report.Valid {
		t.Errorf("nil graph analysis = %+v", a)
	}
}

func TestComponents(t *testing.T) {
	lvl := twoRooms()
	lvl.Areas = append(lvl.Areas, building.Area{Name: "BODEGA", Position: building.C(10, 10)})
	g, _ := navgraph.Build(lvl)

	comps := Components(g)
	if len(comps) != 2 {
		t.Fatalf("components = %v, want 2", comps)
	}
	if comps[1][0] != 2 || len(comps[1]) != 1 {
		t.Errorf("BODEGA component = %v, want [2]", comps[1])
	}
	total := 0
	for _, c := range comps {
		total += len(c)
	}
	if total != len(g.Nodes) {
		t.Errorf("components cover %d nodes, want %d", total, len(g.Nodes))
	}
	if Components(nil) != nil {
		t.Error("Components(nil) should be nil")
	}
}

func TestAnalyzeAllExample(t *testing.T) {
	b, err := building.LoadProject("../../examples/office")
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	graphs, _ := navgraph.BuildAll(b)
	analyses, report := AnalyzeAll(b, graphs)
	if len(analyses) != len(b.Levels) {
		t.Fatalf("analyses = %d, want %d", len(analyses), len(b.Levels))
	}
	if !report.Valid {
		t.Errorf("routing report should stay valid: %s", report.Summary)
	}

	// Reachability must agree with components: an area reaches an exit iff
	// its component holds an exit door.
	for li, a := range analyses {
		g := graphs[li]
		compOf := map[int]int{}
		for ci, comp := range Components(g) {
			for _, n := range comp {
				compOf[n] = ci
			}
		}
		hasExit := map[int]bool{}
		for i, n := range g.Nodes {
			if n.IsExit {
				hasExit[compOf[i]] = true
			}
		}
		for _, e := range a.Areas {
			if e.Reachable != hasExit[compOf[e.AreaIndex]] {
				t.Errorf("level %d area %q: reachable=%v disagrees with components", li, e.Area, e.Reachable)
			}
		}
	}
}
