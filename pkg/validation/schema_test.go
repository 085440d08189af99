package validation

import (
	"testing"

	"github.com/Jancidakis/nasa-pathfinding/pkg/building"
)

func f(v float64) *float64 { return &v }

func validBuilding() *building.Building {
	return &building.Building{
		Name: "test",
		Levels: []building.Level{{
			Name:      "ground",
			Elevation: 0,
			Areas: []building.Area{
				{
					Name: "SALA", Width: f(2), Length: f(2), Position: building.C(0, 0),
					Doors: []building.Door{{Width: 0.9, IsExit: true}},
				},
				{
					Name: "COCINA", Width: f(2), Length: f(2), Position: building.C(3, 0),
					Doors: []building.Door{{Width: 0.8, ConnectsTo: "SALA"}},
				},
			},
		}},
	}
}

func TestValidateBuildingValid(t *testing.T) {
	r := ValidateBuilding(validBuilding())
	if !r.Valid {
		t.Errorf("expected valid report, got %d errors: %v", len(r.Errors), r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", r.Warnings)
	}
}

func TestValidateBuildingNoLevels(t *testing.T) {
	r := ValidateBuilding(&building.Building{})
	if r.Valid {
		t.Error("expected invalid report for building without levels")
	}
	assertHasError(t, r, "levels")

	if ValidateBuilding(nil).Valid {
		t.Error("expected invalid report for nil building")
	}
}

func TestValidateBuildingEmptyAreaName(t *testing.T) {
	b := validBuilding()
	b.Levels[0].Areas[0].Name = " "
	r := ValidateBuilding(b)
	if r.Valid {
		t.Error("expected invalid report for empty area name")
	}
	assertHasError(t, r, "levels[0].areas[0].name")
}

func TestValidateBuildingBadDimensions(t *testing.T) {
	b := validBuilding()
	b.Levels[0].Areas[1].Width = f(0)
	b.Levels[0].Areas[1].Length = f(-1)
	b.Levels[0].Areas[1].Surface = f(-3)
	r := ValidateBuilding(b)
	assertHasError(t, r, "levels[0].areas[1].width")
	assertHasError(t, r, "levels[0].areas[1].length")
	assertHasError(t, r, "levels[0].areas[1].surface")
}

func TestValidateBuildingMissingPosition(t *testing.T) {
	b := validBuilding()
	b.Levels[0].Areas[1].Position = nil
	r := ValidateBuilding(b)
	if !r.Valid {
		t.Error("missing position should only warn")
	}
	assertHasWarning(t, r, "levels[0].areas[1].position")
}

func TestValidateBuildingNoPositionedAreas(t *testing.T) {
	b := validBuilding()
	for i := range b.Levels[0].Areas {
		b.Levels[0].Areas[i].Position = nil
	}
	r := ValidateBuilding(b)
	assertHasWarning(t, r, "levels[0].areas")
}

func TestValidateBuildingNoExit(t *testing.T) {
	b := validBuilding()
	b.Levels[0].Areas[0].Doors = nil
	r := ValidateBuilding(b)
	if !r.Valid {
		t.Error("missing exit should only warn")
	}
	assertHasWarning(t, r, "levels[0]")
}

func TestValidateBuildingUnresolvedConnection(t *testing.T) {
	b := validBuilding()
	b.Levels[0].Areas[1].Doors[0].ConnectsTo = "GARAJE"
	r := ValidateBuilding(b)
	assertHasWarning(t, r, "levels[0].areas[1].doors[0].connects_to")
}

func TestValidateBuildingAmbiguousConnection(t *testing.T) {
	b := validBuilding()
	b.Levels[0].Areas = append(b.Levels[0].Areas, building.Area{
		Name: "SALA DE ESTAR", Position: building.C(0, 4),
	})
	r := ValidateBuilding(b)
	assertHasWarning(t, r, "levels[0].areas[1].doors[0].connects_to")
}

func TestValidateBuildingDuplicateName(t *testing.T) {
	b := validBuilding()
	b.Levels[0].Areas[1].Name = "sala"
	r := ValidateBuilding(b)
	assertHasWarning(t, r, "levels[0].areas[1].name")
}

func TestValidateBuildingExitWithTarget(t *testing.T) {
	b := validBuilding()
	b.Levels[0].Areas[0].Doors[0].ConnectsTo = "COCINA"
	r := ValidateBuilding(b)
	assertHasWarning(t, r, "levels[0].areas[0].doors[0].connects_to")
}

func TestValidateBuildingDoorOutsideArea(t *testing.T) {
	b := validBuilding()
	b.Levels[0].Areas[0].Doors[0].Position = building.C(10, 10)
	r := ValidateBuilding(b)
	assertHasWarning(t, r, "levels[0].areas[0].doors[0].position")
}

func TestValidateBuildingCloseElevations(t *testing.T) {
	b := validBuilding()
	upper := b.Levels[0]
	upper.Name = "mezzanine"
	upper.Elevation = 1.2
	b.Levels = append(b.Levels, upper)
	r := ValidateBuilding(b)
	assertHasWarning(t, r, "levels[1].elevation")
}

func TestValidateExampleProjects(t *testing.T) {
	for _, dir := range []string{"../../examples/two-rooms", "../../examples/office"} {
		b, err := building.LoadProject(dir)
		if err != nil {
			t.Fatalf("LoadProject(%s): %v", dir, err)
		}
		if r := ValidateBuilding(b); !r.Valid {
			t.Errorf("%s: expected valid, got %v", dir, r.Errors)
		}
	}
}

func assertHasError(t *testing.T, r *Report, path string) {
	t.Helper()
	for _, e := range r.Errors {
		if e.Path == path {
			return
		}
	}
	t.Errorf("expected error with path %q, got errors: %v", path, r.Errors)
}

func assertHasWarning(t *testing.T, r *Report, path string) {
	t.Helper()
	for _, w := range r.Warnings {
		if w.Path == path {
			return
		}
	}
	t.Errorf("expected warning with path %q, got warnings: %v", path, r.Warnings)
}
