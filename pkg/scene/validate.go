package scene

import (
	"fmt"

	"github.com/Jancidakis/nasa-pathfinding/pkg/validation"
)

// ValidateGraph performs structural validation on a scene graph output.
// It checks entity integrity, group index consistency, link endpoints and
// bounds enclosure.
func ValidateGraph(g *Graph) *validation.Report {
	r := validation.NewReport()

	if g == nil {
		r.AddError(validation.Result{
			Level:   validation.LevelScene,
			Message: "scene graph is nil",
		})
		return r
	}

	validateEntityIDs(g, r)
	validateGroupIndices(g, r)
	validateGroupMembership(g, r)
	validateChildren(g, r)
	validateLinks(g, r)
	validateBoundsEnclosure(g, r)
	validateEntityDimensions(g, r)

	return r
}

func validateEntityIDs(g *Graph, r *validation.Report) {
	seen := make(map[string]int, len(g.Entities))

	for i, e := range g.Entities {
		if e.ID == "" {
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("entity at index %d has empty ID", i),
				Path:        fmt.Sprintf("entities[%d].id", i),
				ActualValue: "",
				Expected:    "non-empty string",
			})
			continue
		}
		if prev, exists := seen[e.ID]; exists {
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("duplicate entity ID %q at indices %d and %d", e.ID, prev, i),
				Path:        fmt.Sprintf("entities[%d].id", i),
				ActualValue: e.ID,
			})
		}
		seen[e.ID] = i
	}
}

func entityIndex(g *Graph) map[string]Entity {
	idx := make(map[string]Entity, len(g.Entities))
	for _, e := range g.Entities {
		idx[e.ID] = e
	}
	return idx
}

func validateGroupIndices(g *Graph, r *validation.Report) {
	entities := entityIndex(g)

	checkGroup := func(groupType, groupName string, ids []string) {
		for _, id := range ids {
			if _, ok := entities[id]; !ok {
				r.AddError(validation.Result{
					Level:       validation.LevelScene,
					Message:     fmt.Sprintf("group %s.%s references non-existent entity %q", groupType, groupName, id),
					Path:        fmt.Sprintf("groups.%s.%s", groupType, groupName),
					ActualValue: id,
					Expected:    "existing entity ID",
				})
			}
		}
	}

	for name, ids := range g.Groups.Levels {
		checkGroup("levels", name, ids)
	}
	for name, ids := range g.Groups.EntityTypes {
		checkGroup("entity_types", string(name), ids)
	}
}

func memberSets[K ~string](groups map[K][]string) map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(groups))
	for k, ids := range groups {
		m := make(map[string]bool, len(ids))
		for _, id := range ids {
			m[id] = true
		}
		out[string(k)] = m
	}
	return out
}

func validateGroupMembership(g *Graph, r *validation.Report) {
	levelMembers := memberSets(g.Groups.Levels)
	typeMembers := memberSets(g.Groups.EntityTypes)

	check := func(e Entity, axis, value string, members map[string]map[string]bool) {
		m, ok := members[value]
		switch {
		case !ok:
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("entity %q has %s %q but no such group exists", e.ID, axis, value),
				Path:        "groups." + axis,
				ActualValue: value,
			})
		case !m[e.ID]:
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("entity %q has %s %q but is not in that group", e.ID, axis, value),
				Path:        fmt.Sprintf("groups.%s.%s", axis, value),
				ActualValue: e.ID,
			})
		}
	}

	for _, e := range g.Entities {
		if e.ID == "" {
			continue
		}
		check(e, "levels", e.Level, levelMembers)
		check(e, "entity_types", string(e.Type), typeMembers)
	}
}

func validateChildren(g *Graph, r *validation.Report) {
	entities := entityIndex(g)
	for _, e := range g.Entities {
		for _, c := range e.Children {
			child, ok := entities[c]
			if !ok {
				r.AddError(validation.Result{
					Level:       validation.LevelScene,
					Message:     fmt.Sprintf("entity %q lists missing child %q", e.ID, c),
					Path:        fmt.Sprintf("entities.%s.children", e.ID),
					ActualValue: c,
				})
				continue
			}
			if child.Level != e.Level {
				r.AddWarning(validation.Result{
					Level:   validation.LevelScene,
					Message: fmt.Sprintf("child %q of %q is on level %q, parent on %q", c, e.ID, child.Level, e.Level),
					Path:    fmt.Sprintf("entities.%s.children", e.ID),
				})
			}
		}
	}
}

func validateLinks(g *Graph, r *validation.Report) {
	entities := entityIndex(g)
	for i, l := range g.Links {
		for _, end := range []string{l.From, l.To} {
			e, ok := entities[end]
			if !ok || e.Type != EntityNavNode {
				r.AddError(validation.Result{
					Level:       validation.LevelScene,
					Message:     fmt.Sprintf("link %d endpoint %q is not a nav node", i, end),
					Path:        fmt.Sprintf("links[%d]", i),
					ActualValue: end,
					Expected:    "existing nav_node ID",
				})
			}
		}
		if l.Length <= 0 {
			r.AddWarning(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("link %s-%s has zero length", l.From, l.To),
				Path:        fmt.Sprintf("links[%d].length", i),
				ActualValue: l.Length,
			})
		}
	}
}

func validateBoundsEnclosure(g *Graph, r *validation.Report) {
	bounds := g.Metadata.Bounds
	tolerance := 1.0

	for _, e := range g.Entities {
		halfX := e.Dimensions.X / 2
		halfZ := e.Dimensions.Z / 2

		if e.Position.X-halfX < bounds.Min.X-tolerance || e.Position.X+halfX > bounds.Max.X+tolerance {
			r.AddWarning(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("entity %q X extent [%.1f, %.1f] outside scene bounds [%.1f, %.1f]", e.ID, e.Position.X-halfX, e.Position.X+halfX, bounds.Min.X, bounds.Max.X),
				Path:        "metadata.bounds",
				ActualValue: e.Position.X,
			})
			break
		}
		if e.Position.Z-halfZ < bounds.Min.Z-tolerance || e.Position.Z+halfZ > bounds.Max.Z+tolerance {
			r.AddWarning(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("entity %q Z extent [%.1f, %.1f] outside scene bounds [%.1f, %.1f]", e.ID, e.Position.Z-halfZ, e.Position.Z+halfZ, bounds.Min.Z, bounds.Max.Z),
				Path:        "metadata.bounds",
				ActualValue: e.Position.Z,
			})
			break
		}
	}
}

func validateEntityDimensions(g *Graph, r *validation.Report) {
	for _, e := range g.Entities {
		if e.Dimensions.X <= 0 || e.Dimensions.Y <= 0 || e.Dimensions.Z <= 0 {
			r.AddWarning(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("entity %q has zero or negative dimension (%.2f, %.2f, %.2f)", e.ID, e.Dimensions.X, e.Dimensions.Y, e.Dimensions.Z),
				Path:        fmt.Sprintf("entities.%s.dimensions", e.ID),
				ActualValue: fmt.Sprintf("%.2f x %.2f x %.2f", e.Dimensions.X, e.Dimensions.Y, e.Dimensions.Z),
				Expected:    "all dimensions > 0",
			})
		}
	}
}
