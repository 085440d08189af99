package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/Jancidakis/nasa-pathfinding/pkg/building"
)

// levelMatchTolerance mirrors the height window path search uses to decide
// which level a point is on.
const levelMatchTolerance = 1.5

// doorSlack is how far outside its area's footprint an explicit door position
// may sit before it is reported.
const doorSlack = 0.5

// ValidateBuilding performs schema validation on a parsed building. Structural
// problems are errors; anything the navigation core degrades around
// (ungraphed areas, dangling connections, levels without exits) is a warning.
func ValidateBuilding(b *building.Building) *Report {
	r := NewReport()

	if b == nil || len(b.Levels) == 0 {
		r.AddError(Result{
			Level:    LevelSchema,
			Message:  "building must contain at least one level",
			Path:     "levels",
			Expected: "at least 1 level",
		})
		return r
	}

	validateElevations(b, r)
	for li, lvl := range b.Levels {
		validateLevel(li, lvl, r)
	}
	return r
}

func validateElevations(b *building.Building, r *Report) {
	for i := 0; i < len(b.Levels); i++ {
		for j := i + 1; j < len(b.Levels); j++ {
			gap := math.Abs(b.Levels[i].Elevation - b.Levels[j].Elevation)
			if gap <= levelMatchTolerance {
				r.AddWarning(Result{
					Level:       LevelSchema,
					Message:     fmt.Sprintf("levels %q and %q are %.2fm apart; points on the upper one resolve to the lower one", b.Levels[i].Name, b.Levels[j].Name, gap),
					Path:        fmt.Sprintf("levels[%d].elevation", j),
					ActualValue: b.Levels[j].Elevation,
					Expected:    fmt.Sprintf("more than %.1fm from levels[%d]", levelMatchTolerance, i),
				})
			}
		}
	}
}

func validateLevel(li int, lvl building.Level, r *Report) {
	path := fmt.Sprintf("levels[%d]", li)

	if len(lvl.Areas) == 0 {
		r.AddWarning(Result{
			Level:   LevelSchema,
			Message: fmt.Sprintf("level %q has no areas", lvl.Name),
			Path:    path + ".areas",
		})
		return
	}

	positioned := 0
	seen := make(map[string]int, len(lvl.Areas))
	for ai, area := range lvl.Areas {
		apath := fmt.Sprintf("%s.areas[%d]", path, ai)
		if area.Positioned() {
			positioned++
		}
		validateArea(apath, area, r)

		key := strings.ToLower(area.Name)
		if prev, ok := seen[key]; ok && key != "" {
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("duplicate area name %q at areas[%d] and areas[%d]", area.Name, prev, ai),
				Path:        apath + ".name",
				ActualValue: area.Name,
				Suggestions: []string{"connects_to resolves to the first match; rename one of the areas"},
			})
		}
		seen[key] = ai

		for di, door := range area.Doors {
			validateDoor(fmt.Sprintf("%s.doors[%d]", apath, di), lvl, area, door, r)
		}
	}

	if positioned == 0 {
		r.AddWarning(Result{
			Level:   LevelSchema,
			Message: fmt.Sprintf("level %q has no positioned areas; routes fall back to straight lines", lvl.Name),
			Path:    path + ".areas",
		})
	}
	if !lvl.HasExit() {
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("level %q has no exit door; agents on it cannot evacuate", lvl.Name),
			Path:        path,
			Suggestions: []string{"mark at least one door with is_exit: true"},
		})
	}
}

func validateArea(path string, area building.Area, r *Report) {
	if strings.TrimSpace(area.Name) == "" {
		r.AddError(Result{
			Level:    LevelSchema,
			Message:  "area name must not be empty",
			Path:     path + ".name",
			Expected: "non-empty string",
		})
	}
	if !area.Positioned() {
		r.AddWarning(Result{
			Level:   LevelSchema,
			Message: fmt.Sprintf("area %q has no position and will not be graphed", area.Name),
			Path:    path + ".position",
		})
	}
	if area.Width != nil && *area.Width <= 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("area %q: width must be > 0", area.Name),
			Path:        path + ".width",
			ActualValue: *area.Width,
			Expected:    "> 0",
		})
	}
	if area.Length != nil && *area.Length <= 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("area %q: length must be > 0", area.Name),
			Path:        path + ".length",
			ActualValue: *area.Length,
			Expected:    "> 0",
		})
	}
	if area.Surface != nil && *area.Surface < 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("area %q: surface must be non-negative", area.Name),
			Path:        path + ".surface",
			ActualValue: *area.Surface,
			Expected:    ">= 0",
		})
	}
}

func validateDoor(path string, lvl building.Level, area building.Area, door building.Door, r *Report) {
	if door.Width <= 0 {
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("door in %q has no width", area.Name),
			Path:        path + ".width",
			ActualValue: door.Width,
			Expected:    "> 0",
		})
	}

	if door.Position != nil && area.Positioned() {
		lo, hi := area.Footprint().BoundingBox()
		p := door.Position.Point()
		if p.X < lo.X-doorSlack || p.X > hi.X+doorSlack || p.Z < lo.Z-doorSlack || p.Z > hi.Z+doorSlack {
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("door %s lies outside area %q", door.Label(area.Name, 0), area.Name),
				Path:        path + ".position",
				ActualValue: *door.Position,
			})
		}
	}

	if door.IsExit {
		if door.ConnectsTo != "" {
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("exit door in %q also names connects_to %q; the connection is ignored", area.Name, door.ConnectsTo),
				Path:        path + ".connects_to",
				ActualValue: door.ConnectsTo,
			})
		}
		return
	}

	if door.ConnectsTo == "" {
		r.AddInfo(Result{
			Level:   LevelSchema,
			Message: fmt.Sprintf("door in %q leads nowhere (no connects_to, not an exit)", area.Name),
			Path:    path,
		})
		return
	}

	matches := lvl.MatchAreas(door.ConnectsTo)
	switch {
	case len(matches) == 0:
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("connects_to %q from %q matches no area on the level", door.ConnectsTo, area.Name),
			Path:        path + ".connects_to",
			ActualValue: door.ConnectsTo,
		})
	case len(matches) > 1:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = lvl.Areas[m].Name
		}
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("connects_to %q from %q is ambiguous (%s); the first match is used", door.ConnectsTo, area.Name, strings.Join(names, ", ")),
			Path:        path + ".connects_to",
			ActualValue: door.ConnectsTo,
			Suggestions: []string{"use the full area name"},
		})
	}
}
