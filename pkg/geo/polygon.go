package geo

import "math"

// Polygon is a closed polygon defined by its vertices in order.
type Polygon struct {
	Vertices []Point2D
}

// NewPolygon creates a polygon from a list of vertices.
func NewPolygon(pts ...Point2D) Polygon {
	return Polygon{Vertices: pts}
}

// Rect returns the axis-aligned rectangle of the given size centered on c,
// wound counterclockwise. width spans X, length spans Z.
func Rect(c Point2D, width, length float64) Polygon {
	hw, hl := width/2, length/2
	return NewPolygon(
		Pt(c.X-hw, c.Z-hl),
		Pt(c.X+hw, c.Z-hl),
		Pt(c.X+hw, c.Z+hl),
		Pt(c.X-hw, c.Z+hl),
	)
}

// Area returns the unsigned area using the shoelace formula.
func (p Polygon) Area() float64 {
	n := len(p.Vertices)
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += p.Vertices[i].X * p.Vertices[j].Z
		area -= p.Vertices[j].X * p.Vertices[i].Z
	}
	return math.Abs(area / 2)
}

// BoundingBox returns the axis-aligned bounding box as (min, max).
func (p Polygon) BoundingBox() (Point2D, Point2D) {
	if len(p.Vertices) == 0 {
		return Point2D{}, Point2D{}
	}
	minP := p.Vertices[0]
	maxP := p.Vertices[0]
	for _, v := range p.Vertices[1:] {
		minP.X = math.Min(minP.X, v.X)
		minP.Z = math.Min(minP.Z, v.Z)
		maxP.X = math.Max(maxP.X, v.X)
		maxP.Z = math.Max(maxP.Z, v.Z)
	}
	return minP, maxP
}

// Inset shrinks the bounding box of p by margin on every side. When the box is
// narrower than twice the margin along an axis, that axis collapses onto its
// midline.
func (p Polygon) Inset(margin float64) (Point2D, Point2D) {
	lo, hi := p.BoundingBox()
	inset := func(a, b float64) (float64, float64) {
		if b-a <= 2*margin {
			m := (a + b) / 2
			return m, m
		}
		return a + margin, b - margin
	}
	lo.X, hi.X = inset(lo.X, hi.X)
	lo.Z, hi.Z = inset(lo.Z, hi.Z)
	return lo, hi
}

// Contains returns true if the point is inside the polygon using ray casting.
func (p Polygon) Contains(pt Point2D) bool {
	n := len(p.Vertices)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi := p.Vertices[i]
		vj := p.Vertices[j]
		if (vi.Z > pt.Z) != (vj.Z > pt.Z) &&
			pt.X < (vj.X-vi.X)*(pt.Z-vi.Z)/(vj.Z-vi.Z)+vi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}
