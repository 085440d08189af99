package geo

import (
	"fmt"
	"math"
)

// Vec3 is a point or vector in scene space (Y up).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// V3 is a shorthand constructor for Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Length returns the Euclidean length of the vector.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Lerp returns the linear interpolation between v and w at t in [0,1].
func (v Vec3) Lerp(w Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
		Z: v.Z + (w.Z-v.Z)*t,
	}
}

// Plan drops the height component.
func (v Vec3) Plan() Point2D {
	return Point2D{X: v.X, Z: v.Z}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// Distance3 returns the Euclidean distance between a and b. It is the only
// edge weight and the only search heuristic used on navigation graphs.
func Distance3(a, b Vec3) float64 {
	return a.Sub(b).Length()
}

// LerpPath returns steps+1 evenly spaced points from start to end, both ends
// included. steps below 1 is treated as 1.
func LerpPath(start, end Vec3, steps int) []Vec3 {
	if steps < 1 {
		steps = 1
	}
	pts := make([]Vec3, steps+1)
	for i := 0; i <= steps; i++ {
		pts[i] = start.Lerp(end, float64(i)/float64(steps))
	}
	// Pin the last point so callers can compare it against end exactly.
	pts[steps] = end
	return pts
}

// PathLength returns the summed segment length of a polyline.
func PathLength(pts []Vec3) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += Distance3(pts[i-1], pts[i])
	}
	return total
}
