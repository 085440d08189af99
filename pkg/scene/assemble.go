package scene

import (
	"fmt"
	"math"
	"time"

	"github.com/Jancidakis/nasa-pathfinding/pkg/building"
	"github.com/Jancidakis/nasa-pathfinding/pkg/geo"
	"github.com/Jancidakis/nasa-pathfinding/pkg/navgraph"
)

const (
	floorHeight = 3.0 // meters per story
	doorHeight  = 2.1
	doorDepth   = 0.2
	nodeSize    = 0.2
)

// Assemble converts a building and its per-level navigation graphs into a
// scene graph. graphs must be index-aligned with b.Levels; a nil entry skips
// that level's nav nodes.
func Assemble(b *building.Building, graphs []*navgraph.Graph) *Graph {
	g := NewGraph()

	for li, lvl := range b.Levels {
		assembleLevel(li, lvl, g)
		if li < len(graphs) && graphs[li] != nil {
			assembleNavGraph(li, lvl, graphs[li], g)
		}
	}

	g.Metadata = Metadata{
		Building:    b.Name,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Bounds:      computeBounds(g.Entities),
	}
	return g
}

func areaID(li, ai int) string     { return fmt.Sprintf("l%d-a%d", li, ai) }
func doorID(li, ai, di int) string { return fmt.Sprintf("l%d-a%d-d%d", li, ai, di) }
func stairsID(li, si int) string   { return fmt.Sprintf("l%d-s%d", li, si) }
func nodeID(li, ni int) string     { return fmt.Sprintf("l%d-n%d", li, ni) }

func assembleLevel(li int, lvl building.Level, g *Graph) {
	for ai, a := range lvl.Areas {
		if !a.Positioned() {
			continue
		}
		w, l := a.Size()
		c := a.Position.Point()
		meta := map[string]any{"doors": len(a.Doors)}
		if a.Surface != nil {
			meta["surface"] = *a.Surface
		}

		var children []string
		for di, d := range a.Doors {
			pos := navgraph.SynthesizeDoor(a, di, lvl.Elevation)
			if d.Position != nil {
				pos = d.Position.Point().At(lvl.Elevation)
			}
			et, mat := EntityDoor, "wood"
			if d.IsExit {
				et, mat = EntityExit, "exit_sign"
			}
			width := d.Width
			if width <= 0 {
				width = 0.9
			}
			id := doorID(li, ai, di)
			children = append(children, id)
			doorMeta := map[string]any{}
			if d.ConnectsTo != "" {
				doorMeta["connects_to"] = d.ConnectsTo
			}
			addEntity(g, Entity{
				ID:         id,
				Type:       et,
				Name:       d.Label(a.Name, di),
				Position:   pos,
				Dimensions: geo.V3(width, doorHeight, doorDepth),
				Material:   mat,
				Level:      lvl.Name,
				Metadata:   doorMeta,
			})
		}

		addEntity(g, Entity{
			ID:         areaID(li, ai),
			Type:       EntityArea,
			Name:       a.Name,
			Position:   c.At(lvl.Elevation),
			Dimensions: geo.V3(w, floorHeight, l),
			Material:   "floor",
			Level:      lvl.Name,
			Metadata:   meta,
			Children:   children,
		})
	}

	for si, s := range lvl.Stairs {
		if s.Position == nil {
			continue
		}
		addEntity(g, Entity{
			ID:         stairsID(li, si),
			Type:       EntityStairs,
			Name:       s.Name,
			Position:   s.Position.Point().At(lvl.Elevation),
			Dimensions: geo.V3(1.2, floorHeight, 2.5),
			Material:   "concrete",
			Level:      lvl.Name,
			Metadata:   map[string]any{"to_level": s.ToLevel},
		})
	}
}

func assembleNavGraph(li int, lvl building.Level, ng *navgraph.Graph, g *Graph) {
	for ni, n := range ng.Nodes {
		if n.Ungraphed {
			continue
		}
		addEntity(g, Entity{
			ID:         nodeID(li, ni),
			Type:       EntityNavNode,
			Name:       n.Label,
			Position:   n.Position,
			Dimensions: geo.V3(nodeSize, nodeSize, nodeSize),
			Material:   "marker",
			Level:      lvl.Name,
			Metadata: map[string]any{
				"index":   ni,
				"is_door": n.IsDoor,
				"is_exit": n.IsExit,
			},
		})
	}
	for u := range ng.Nodes {
		for _, v := range ng.Neighbors(u) {
			if v <= u {
				continue
			}
			g.Links = append(g.Links, Link{
				From:   nodeID(li, u),
				To:     nodeID(li, v),
				Length: ng.EdgeLength(u, v),
			})
		}
	}
}

// addEntity appends an entity and updates all group indices.
func addEntity(g *Graph, e Entity) {
	g.Entities = append(g.Entities, e)
	g.Groups.Levels[e.Level] = append(g.Groups.Levels[e.Level], e.ID)
	g.Groups.EntityTypes[e.Type] = append(g.Groups.EntityTypes[e.Type], e.ID)
}

// computeBounds calculates the AABB of all entities.
func computeBounds(entities []Entity) BoundingBox {
	if len(entities) == 0 {
		return BoundingBox{}
	}
	minV := geo.V3(math.MaxFloat64, math.MaxFloat64, math.MaxFloat64)
	maxV := geo.V3(-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64)

	for _, e := range entities {
		halfX := e.Dimensions.X / 2
		halfZ := e.Dimensions.Z / 2

		minV.X = math.Min(minV.X, e.Position.X-halfX)
		maxV.X = math.Max(maxV.X, e.Position.X+halfX)
		minV.Y = math.Min(minV.Y, e.Position.Y)
		maxV.Y = math.Max(maxV.Y, e.Position.Y+e.Dimensions.Y)
		minV.Z = math.Min(minV.Z, e.Position.Z-halfZ)
		maxV.Z = math.Max(maxV.Z, e.Position.Z+halfZ)
	}
	return BoundingBox{Min: minV, Max: maxV}
}
