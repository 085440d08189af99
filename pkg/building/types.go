package building

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Jancidakis/nasa-pathfinding/pkg/geo"
)

// WaistHeight is the fixed offset above a level's elevation at which every
// navigation point sits.
const WaistHeight = 0.5

// DefaultAreaSize is used for a missing or non-positive area width/length.
const DefaultAreaSize = 4.0

// Building is an ordered stack of independent levels.
type Building struct {
	Name   string  `yaml:"name" json:"name"`
	Levels []Level `yaml:"levels" json:"levels"`
}

// Level is one floor. Levels share no adjacency; stairs are informational.
type Level struct {
	Name      string  `yaml:"name" json:"name"`
	Elevation float64 `yaml:"elevation" json:"elevation"`
	Areas     []Area  `yaml:"areas" json:"areas"`
	Stairs    []Stair `yaml:"stairs,omitempty" json:"stairs,omitempty"`
}

// NavHeight returns the Y coordinate of every navigation point on the level.
func (l Level) NavHeight() float64 {
	return l.Elevation + WaistHeight
}

// AreaByName returns the index of the area whose name equals name
// case-insensitively, or -1.
func (l Level) AreaByName(name string) int {
	for i := range l.Areas {
		if strings.EqualFold(l.Areas[i].Name, name) {
			return i
		}
	}
	return -1
}

// MatchAreas returns the indices of every area whose name contains needle,
// case-insensitively, in level order.
func (l Level) MatchAreas(needle string) []int {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return nil
	}
	var idx []int
	for i := range l.Areas {
		if strings.Contains(strings.ToLower(l.Areas[i].Name), needle) {
			idx = append(idx, i)
		}
	}
	return idx
}

// HasExit reports whether any area on the level has an exit door.
func (l Level) HasExit() bool {
	for _, a := range l.Areas {
		for _, d := range a.Doors {
			if d.IsExit {
				return true
			}
		}
	}
	return false
}

// Area is a room or space on a level.
type Area struct {
	Name     string   `yaml:"name" json:"name"`
	Surface  *float64 `yaml:"surface,omitempty" json:"surface,omitempty"`
	Width    *float64 `yaml:"width,omitempty" json:"width,omitempty"`
	Length   *float64 `yaml:"length,omitempty" json:"length,omitempty"`
	Position *Coord   `yaml:"position,omitempty" json:"position,omitempty"`
	Doors    []Door   `yaml:"doors,omitempty" json:"doors,omitempty"`
}

// Positioned reports whether the area can be placed in a navigation graph.
func (a Area) Positioned() bool {
	return a.Position != nil
}

// Size returns width and length, substituting DefaultAreaSize for missing or
// non-positive values.
func (a Area) Size() (float64, float64) {
	w, l := DefaultAreaSize, DefaultAreaSize
	if a.Width != nil && *a.Width > 0 {
		w = *a.Width
	}
	if a.Length != nil && *a.Length > 0 {
		l = *a.Length
	}
	return w, l
}

// Footprint returns the area's rectangle on the floor plan. Callers must check
// Positioned first.
func (a Area) Footprint() geo.Polygon {
	w, l := a.Size()
	return geo.Rect(a.Position.Point(), w, l)
}

// Door connects an area to another area or, when IsExit is set, to the
// exterior.
type Door struct {
	Name       string  `yaml:"name,omitempty" json:"name,omitempty"`
	Width      float64 `yaml:"width" json:"width"`
	Position   *Coord  `yaml:"position,omitempty" json:"position,omitempty"`
	ConnectsTo string  `yaml:"connects_to,omitempty" json:"connects_to,omitempty"`
	IsExit     bool    `yaml:"is_exit,omitempty" json:"is_exit,omitempty"`
}

// Label returns the door name, or a positional label when unnamed.
func (d Door) Label(areaName string, index int) string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("%s/door[%d]", areaName, index)
}

// Stair is informational metadata; search never crosses levels.
type Stair struct {
	Name     string `yaml:"name" json:"name"`
	Position *Coord `yaml:"position,omitempty" json:"position,omitempty"`
	ToLevel  string `yaml:"to_level,omitempty" json:"to_level,omitempty"`
}

// Coord is a floor-plan coordinate written as [x, z] (or {x:, z:}).
type Coord [2]float64

// C is a shorthand constructor returning a *Coord for literals.
func C(x, z float64) *Coord {
	return &Coord{x, z}
}

// Point converts the coordinate to a geo.Point2D.
func (c Coord) Point() geo.Point2D {
	return geo.Pt(c[0], c[1])
}

// UnmarshalYAML accepts either a two-element sequence or an x/z mapping.
func (c *Coord) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var xs []float64
		if err := node.Decode(&xs); err != nil {
			return err
		}
		if len(xs) != 2 {
			return fmt.Errorf("line %d: position needs 2 values, got %d", node.Line, len(xs))
		}
		*c = Coord{xs[0], xs[1]}
		return nil
	case yaml.MappingNode:
		var m struct {
			X float64 `yaml:"x"`
			Z float64 `yaml:"z"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		*c = Coord{m.X, m.Z}
		return nil
	default:
		return fmt.Errorf("line %d: position must be [x, z] or {x, z}", node.Line)
	}
}
