package pathfind

import (
	"fmt"
	"math"

	"github.com/Jancidakis/nasa-pathfinding/pkg/building"
	"github.com/Jancidakis/nasa-pathfinding/pkg/geo"
	"github.com/Jancidakis/nasa-pathfinding/pkg/navgraph"
)

// ExitTarget selects which point of an exit an agent is routed to.
type ExitTarget string

const (
	// ExitTargetArea routes to the center of the area that owns the exit door.
	ExitTargetArea ExitTarget = "area"
	// ExitTargetDoor routes to the exit door itself.
	ExitTargetDoor ExitTarget = "door"
)

// ParseExitTarget accepts "area", "door" or the empty string (area).
func ParseExitTarget(s string) (ExitTarget, error) {
	switch ExitTarget(s) {
	case "", ExitTargetArea:
		return ExitTargetArea, nil
	case ExitTargetDoor:
		return ExitTargetDoor, nil
	}
	return "", fmt.Errorf("unknown exit target %q (want %q or %q)", s, ExitTargetArea, ExitTargetDoor)
}

// Exit is a candidate egress point on a level.
type Exit struct {
	Position  geo.Vec3 `json:"position"`
	AreaIndex int      `json:"area_index"`
	DoorIndex int      `json:"door_index"`
	Area      string   `json:"area"`
	Door      string   `json:"door"`
	Distance  float64  `json:"distance"`
}

// NearestExit scans every exit door on the given level and returns the one
// closest to pos. Ties keep the first exit in area then door order. ok is
// false when the level index is out of range or the level has no exit in a
// positioned area.
func NearestExit(pos geo.Vec3, levelIndex int, b *building.Building, target ExitTarget) (Exit, bool) {
	if b == nil || levelIndex < 0 || levelIndex >= len(b.Levels) {
		return Exit{}, false
	}
	lvl := b.Levels[levelIndex]
	y := lvl.NavHeight()

	best := Exit{}
	bestDist := math.Inf(1)
	found := false
	for ai, a := range lvl.Areas {
		if !a.Positioned() {
			continue
		}
		for di, d := range a.Doors {
			if !d.IsExit {
				continue
			}
			p := a.Position.Point().At(y)
			if target == ExitTargetDoor {
				if d.Position != nil {
					p = d.Position.Point().At(y)
				} else {
					p = navgraph.SynthesizeDoor(a, di, y)
				}
			}
			dist := geo.Distance3(pos, p)
			if dist < bestDist {
				bestDist = dist
				best = Exit{
					Position:  p,
					AreaIndex: ai,
					DoorIndex: di,
					Area:      a.Name,
					Door:      d.Label(a.Name, di),
					Distance:  dist,
				}
				found = true
			}
		}
	}
	return best, found
}

// FindNearestExit returns the position an agent at pos on the given level
// should head for, using the area-center target.
func FindNearestExit(pos geo.Vec3, levelIndex int, b *building.Building) (geo.Vec3, bool) {
	e, ok := NearestExit(pos, levelIndex, b, ExitTargetArea)
	return e.Position, ok
}
