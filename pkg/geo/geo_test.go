package geo

import (
	"math"
	"testing"
)

const tolerance = 0.01

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

// --- Point2D tests ---

func TestPointDistance(t *testing.T) {
	a := Pt(0, 0)
	b := Pt(3, 4)
	if !approxEqual(a.Distance(b), 5.0, tolerance) {
		t.Errorf("expected distance 5.0, got %f", a.Distance(b))
	}
}

func TestPointLerp(t *testing.T) {
	mid := Pt(0, 0).Lerp(Pt(10, 10), 0.5)
	if !approxEqual(mid.X, 5, tolerance) || !approxEqual(mid.Z, 5, tolerance) {
		t.Errorf("expected (5,5), got (%f,%f)", mid.X, mid.Z)
	}
}

func TestPointAt(t *testing.T) {
	v := Pt(2, -3).At(3.5)
	if v != V3(2, 3.5, -3) {
		t.Errorf("expected (2,3.5,-3), got %v", v)
	}
	if v.Plan() != Pt(2, -3) {
		t.Errorf("Plan() = %v, want (2,-3)", v.Plan())
	}
}

// --- Vec3 tests ---

func TestDistance3(t *testing.T) {
	tests := []struct {
		a, b Vec3
		want float64
	}{
		{V3(0, 0, 0), V3(0, 0, 0), 0},
		{V3(0, 0, 0), V3(1, 2, 2), 3},
		{V3(1, 0.5, 1), V3(4, 0.5, 5), 5},
		{V3(-1, -1, -1), V3(1, 1, 1), math.Sqrt(12)},
	}
	for _, tt := range tests {
		if got := Distance3(tt.a, tt.b); !approxEqual(got, tt.want, 1e-9) {
			t.Errorf("Distance3(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
		if got := Distance3(tt.b, tt.a); !approxEqual(got, tt.want, 1e-9) {
			t.Errorf("Distance3 not symmetric for %v, %v", tt.a, tt.b)
		}
	}
}

func TestLerpPath(t *testing.T) {
	start := V3(0, 0.5, 0)
	end := V3(10, 0.5, 0)
	pts := LerpPath(start, end, 10)
	if len(pts) != 11 {
		t.Fatalf("expected 11 points, got %d", len(pts))
	}
	if pts[0] != start {
		t.Errorf("first point = %v, want %v", pts[0], start)
	}
	if pts[10] != end {
		t.Errorf("last point = %v, want %v", pts[10], end)
	}
	for i := 1; i < len(pts); i++ {
		if d := Distance3(pts[i-1], pts[i]); !approxEqual(d, 1, 1e-9) {
			t.Errorf("segment %d length = %f, want 1", i, d)
		}
	}
}

func TestLerpPathClampsSteps(t *testing.T) {
	pts := LerpPath(V3(0, 0, 0), V3(1, 1, 1), 0)
	if len(pts) != 2 {
		t.Fatalf("expected 2 points for steps=0, got %d", len(pts))
	}
}

func TestPathLength(t *testing.T) {
	pts := []Vec3{V3(0, 0, 0), V3(3, 0, 0), V3(3, 0, 4)}
	if got := PathLength(pts); !approxEqual(got, 7, 1e-9) {
		t.Errorf("PathLength = %f, want 7", got)
	}
	if got := PathLength(nil); got != 0 {
		t.Errorf("PathLength(nil) = %f, want 0", got)
	}
}

// --- Polygon tests ---

func TestPolygonAreaSquare(t *testing.T) {
	sq := NewPolygon(Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10))
	if !approxEqual(sq.Area(), 100, tolerance) {
		t.Errorf("expected area 100, got %f", sq.Area())
	}
}

func TestRect(t *testing.T) {
	r := Rect(Pt(3, 0), 2, 4)
	if !approxEqual(r.Area(), 8, tolerance) {
		t.Errorf("expected area 8, got %f", r.Area())
	}
	lo, hi := r.BoundingBox()
	if lo != Pt(2, -2) || hi != Pt(4, 2) {
		t.Errorf("bounding box = %v..%v, want (2,-2)..(4,2)", lo, hi)
	}
	if !r.Contains(Pt(3, 0)) {
		t.Error("rect should contain its center")
	}
	if r.Contains(Pt(5, 0)) {
		t.Error("rect should not contain (5,0)")
	}
}

func TestPolygonInset(t *testing.T) {
	lo, hi := Rect(Pt(0, 0), 2, 0.3).Inset(0.25)
	if !approxEqual(lo.X, -0.75, 1e-9) || !approxEqual(hi.X, 0.75, 1e-9) {
		t.Errorf("x span = %f..%f, want -0.75..0.75", lo.X, hi.X)
	}
	// 0.3 m is narrower than twice the margin, so Z collapses to the midline.
	if lo.Z != 0 || hi.Z != 0 {
		t.Errorf("z span = %f..%f, want 0..0", lo.Z, hi.Z)
	}
}

func TestPolygonContains(t *testing.T) {
	sq := NewPolygon(Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10))
	if !sq.Contains(Pt(5, 5)) {
		t.Error("expected (5,5) inside square")
	}
	if sq.Contains(Pt(15, 5)) {
		t.Error("expected (15,5) outside square")
	}
	if NewPolygon(Pt(0, 0), Pt(1, 1)).Contains(Pt(0, 0)) {
		t.Error("degenerate polygon should contain nothing")
	}
}
