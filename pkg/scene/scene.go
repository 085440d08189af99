// Package scene produces render-facing output: a static entity graph of the
// building and its navigation nodes, and per-tick agent frames.
package scene

import "github.com/Jancidakis/nasa-pathfinding/pkg/geo"

// EntityType identifies the kind of entity.
type EntityType string

const (
	EntityArea    EntityType = "area"
	EntityDoor    EntityType = "door"
	EntityExit    EntityType = "exit"
	EntityStairs  EntityType = "stairs"
	EntityNavNode EntityType = "nav_node"
)

// BoundingBox defines an axis-aligned bounding box.
type BoundingBox struct {
	Min geo.Vec3 `json:"min"`
	Max geo.Vec3 `json:"max"`
}

// Entity is a single element in the scene graph. Position is the center of
// the footprint at floor height; Dimensions are width, height and length.
type Entity struct {
	ID         string         `json:"id"`
	Type       EntityType     `json:"type"`
	Name       string         `json:"name,omitempty"`
	Position   geo.Vec3       `json:"position"`
	Dimensions geo.Vec3       `json:"dimensions"`
	Material   string         `json:"material"`
	Level      string         `json:"level"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Children   []string       `json:"children,omitempty"`
}

// Link is a walkable connection between two nav_node entities.
type Link struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Length float64 `json:"length"`
}

// Graph is the complete static scene of a building.
type Graph struct {
	Metadata Metadata `json:"metadata"`
	Entities []Entity `json:"entities"`
	Links    []Link   `json:"links"`
	Groups   Groups   `json:"groups"`
}

// Metadata holds scene-level information.
type Metadata struct {
	Building    string      `json:"building"`
	GeneratedAt string      `json:"generated_at"`
	Bounds      BoundingBox `json:"bounds"`
}

// Groups organizes entity IDs by level and type for fast filtering.
type Groups struct {
	Levels      map[string][]string     `json:"levels"`
	EntityTypes map[EntityType][]string `json:"entity_types"`
}

// NewGraph creates an empty scene graph.
func NewGraph() *Graph {
	return &Graph{
		Entities: []Entity{},
		Links:    []Link{},
		Groups: Groups{
			Levels:      make(map[string][]string),
			EntityTypes: make(map[EntityType][]string),
		},
	}
}

// AgentState is one agent as seen by a renderer.
type AgentState struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Level     int       `json:"level"`
	Position  geo.Vec3  `json:"position"`
	Target    *geo.Vec3 `json:"target,omitempty"`
	Remaining int       `json:"remaining_waypoints"`
	State     string    `json:"state"`
	Color     string    `json:"color,omitempty"`
}

// Frame is the agent snapshot emitted after each tick.
type Frame struct {
	Tick      int          `json:"tick"`
	Elapsed   float64      `json:"elapsed"` // simulated seconds
	Running   bool         `json:"running"`
	Evacuated int          `json:"evacuated"`
	Agents    []AgentState `json:"agents"`
}
