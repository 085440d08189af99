package sim

import (
	"math"

	"github.com/Jancidakis/nasa-pathfinding/pkg/geo"
	"github.com/Jancidakis/nasa-pathfinding/pkg/profile"
)

// ArrivalTolerance absorbs float rounding when comparing the remaining
// distance to a waypoint with the distance covered in a tick.
const ArrivalTolerance = 1e-9

// State is an agent's lifecycle stage.
type State string

const (
	StateIdle       State = "idle"
	StateEvacuating State = "evacuating"
	StateEvacuated  State = "evacuated"
)

// Agent is a simulated occupant. Path holds the remaining waypoints and is
// consumed from the front; PathHistory only grows.
type Agent struct {
	ID             string     `json:"id"`
	ProfileID      string     `json:"profile_id"`
	Position       geo.Vec3   `json:"position"`
	TargetPosition *geo.Vec3  `json:"target_position,omitempty"`
	Path           []geo.Vec3 `json:"path"`
	PathHistory    []geo.Vec3 `json:"path_history"`
	LevelIndex     int        `json:"level_index"`
	IsEvacuating   bool       `json:"is_evacuating"`
	Evacuated      bool       `json:"evacuated"`

	// Simulated seconds at which the current route was assigned and at
	// which the agent got out.
	StartedAt   float64 `json:"started_at,omitempty"`
	EvacuatedAt float64 `json:"evacuated_at,omitempty"`
}

// State derives the lifecycle stage from the flags.
func (a Agent) State() State {
	switch {
	case a.Evacuated:
		return StateEvacuated
	case a.IsEvacuating:
		return StateEvacuating
	default:
		return StateIdle
	}
}

// Clone returns a deep copy.
func (a Agent) Clone() Agent {
	c := a
	if a.TargetPosition != nil {
		t := *a.TargetPosition
		c.TargetPosition = &t
	}
	c.Path = append([]geo.Vec3(nil), a.Path...)
	c.PathHistory = append([]geo.Vec3(nil), a.PathHistory...)
	return c
}

// validStep reports whether dt is a positive, finite duration.
func validStep(dt float64) bool {
	return dt > 0 && !math.IsInf(dt, 0) && !math.IsNaN(dt)
}

// Advance moves a along its path for dt seconds at its profile's speed. The
// input is never modified. Agents that are evacuated, have no path, or whose
// profile is unknown are returned unchanged, as they are for a dt that is not
// positive and finite. Reaching a waypoint ends the
// tick's movement for that agent: leftover distance is dropped.
func Advance(a Agent, dt float64, profiles profile.Catalog) Agent {
	if a.Evacuated || len(a.Path) == 0 || !validStep(dt) {
		return a
	}
	p, ok := profiles.Lookup(a.ProfileID)
	if !ok {
		return a
	}

	move := p.Speed * dt
	target := a.Path[0]
	dist := geo.Distance3(a.Position, target)

	if dist <= move+ArrivalTolerance {
		a.Position = target
		a.Path = a.Path[1:]
		history := make([]geo.Vec3, len(a.PathHistory), len(a.PathHistory)+1)
		copy(history, a.PathHistory)
		a.PathHistory = append(history, target)
		if len(a.Path) == 0 {
			a.Path = nil
			a.Evacuated = true
			a.IsEvacuating = false
		}
		return a
	}

	a.Position = a.Position.Lerp(target, move/dist)
	return a
}
