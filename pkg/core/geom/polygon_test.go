package geom

import (
	"math"
	"testing"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestRectAreaCentroid(t *testing.T) {
	p := Rect(10, 20, 110, 70)

	if got := p.Area(); !near(got, 5000, 1e-9) {
		t.Errorf("Area() = %v, want 5000", got)
	}
	c := p.Centroid()
	if !near(c.X, 60, 1e-9) || !near(c.Y, 45, 1e-9) {
		t.Errorf("Centroid() = %v, want (60, 45)", c)
	}
	b := p.Bounds()
	if b.LLx != 10 || b.LLy != 20 || b.URx != 110 || b.URy != 70 {
		t.Errorf("Bounds() = %+v", b)
	}
	if got := p.Perimeter(); !near(got, 300, 1e-9) {
		t.Errorf("Perimeter() = %v, want 300", got)
	}
}

func TestContains(t *testing.T) {
	// L-shaped concave polygon
	p := Close([]Point{Pt(0, 0), Pt(10, 0), Pt(10, 4), Pt(4, 4), Pt(4, 10), Pt(0, 10)})

	tests := []struct {
		pt   Point
		want bool
	}{
		{Pt(2, 2), true},
		{Pt(8, 2), true},
		{Pt(2, 8), true},
		{Pt(8, 8), false},
		{Pt(-1, 5), false},
		{Pt(20, 20), false},
	}
	for _, tt := range tests {
		if got := p.Contains(tt.pt); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.pt, got, tt.want)
		}
	}
}

func TestSplitConservesArea(t *testing.T) {
	p := Rect(0, 0, 100, 50)

	for _, angle := range []float64{0, 0.3, math.Pi / 2, 2.1, -0.7} {
		pieces := p.Split(Pt(40, 20), angle)
		if len(pieces) != 2 {
			t.Fatalf("Split(angle=%v) returned %d pieces, want 2", angle, len(pieces))
		}
		sum := pieces[0].Area() + pieces[1].Area()
		if !near(sum, p.Area(), 1e-6) {
			t.Errorf("Split(angle=%v) area %v, want %v", angle, sum, p.Area())
		}
		for _, piece := range pieces {
			if piece[0] != piece[len(piece)-1] {
				t.Errorf("Split(angle=%v) produced an open ring", angle)
			}
		}
	}
}

func TestSplitMissesPolygon(t *testing.T) {
	p := Rect(0, 0, 10, 10)
	pieces := p.Split(Pt(50, 50), 0)
	if len(pieces) != 1 {
		t.Fatalf("Split() outside polygon returned %d pieces, want 1", len(pieces))
	}
	if !near(pieces[0].Area(), 100, 1e-9) {
		t.Errorf("unsplit piece area = %v, want 100", pieces[0].Area())
	}
}

func TestClipSegment(t *testing.T) {
	p := Rect(0, 0, 10, 10)
	segs := p.ClipSegment(Pt(-5, 5), Pt(15, 5))
	if len(segs) != 1 {
		t.Fatalf("ClipSegment() returned %d segments, want 1", len(segs))
	}
	if !near(segs[0].A.X, 0, 1e-9) || !near(segs[0].B.X, 10, 1e-9) {
		t.Errorf("ClipSegment() = %+v, want x from 0 to 10", segs[0])
	}

	// A horizontal line through both arms of a U shape yields two pieces.
	u := Close([]Point{Pt(0, 0), Pt(3, 0), Pt(3, 7), Pt(7, 7), Pt(7, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)})
	segs = u.ClipSegment(Pt(-1, 3), Pt(11, 3))
	if len(segs) != 2 {
		t.Fatalf("ClipSegment() through U returned %d segments, want 2", len(segs))
	}

	if segs := p.ClipSegment(Pt(20, 20), Pt(30, 30)); len(segs) != 0 {
		t.Errorf("ClipSegment() outside = %v, want none", segs)
	}
}

func TestTransforms(t *testing.T) {
	p := Rect(0, 0, 10, 10)

	moved := p.Translate(Pt(5, -2))
	if moved[0] != Pt(5, -2) {
		t.Errorf("Translate() first point = %v", moved[0])
	}
	if p[0] != Pt(0, 0) {
		t.Error("Translate() must not modify its input")
	}

	rot := p.Rotate(Pt(5, 5), math.Pi/2)
	if !near(rot.Area(), 100, 1e-9) {
		t.Errorf("Rotate() area = %v, want 100", rot.Area())
	}

	half := p.Scale(p.Centroid(), 0.5)
	if !near(half.Area(), 25, 1e-9) {
		t.Errorf("Scale(0.5) area = %v, want 25", half.Area())
	}

	m := p.MirrorY(100)
	if b := m.Bounds(); b.LLy != 90 || b.URy != 100 {
		t.Errorf("MirrorY() bounds = %+v", b)
	}
}

func TestPointAt(t *testing.T) {
	p := Rect(0, 0, 10, 10)
	if got := p.PointAt(0); got != Pt(0, 0) {
		t.Errorf("PointAt(0) = %v", got)
	}
	if got := p.PointAt(0.125); !near(got.X, 5, 1e-9) || !near(got.Y, 0, 1e-9) {
		t.Errorf("PointAt(0.125) = %v, want (5, 0)", got)
	}
	if got := p.PointAt(0.5); !near(got.X, 10, 1e-9) || !near(got.Y, 10, 1e-9) {
		t.Errorf("PointAt(0.5) = %v, want (10, 10)", got)
	}
}

func TestClipBounds(t *testing.T) {
	p := Rect(-10, -10, 10, 10)
	got := p.ClipBounds(Bounds{LLx: 0, LLy: 0, URx: 100, URy: 100})
	if !near(got.Area(), 100, 1e-9) {
		t.Errorf("ClipBounds() area = %v, want 100", got.Area())
	}
	if got := p.ClipBounds(Bounds{LLx: 50, LLy: 50, URx: 60, URy: 60}); got != nil {
		t.Errorf("ClipBounds() disjoint = %v, want nil", got)
	}
}
