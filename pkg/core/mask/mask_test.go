package mask

import (
	"testing"

	"github.com/gre/shattered/pkg/core/geom"
)

// cellCenter returns the middle of grid cell (x, y) for a 1 mm mask.
func cellCenter(x, y int) geom.Point { return geom.Pt(float64(x)+0.5, float64(y)+0.5) }

// paintCell paints exactly cell (x, y) of a 1 mm mask.
func paintCell(m *PaintMask, x, y int) {
	m.PaintCircle(geom.Pt(float64(x)+0.2, float64(y)+0.2), 0.5)
}

func TestNewDimensions(t *testing.T) {
	m := New(0.5, 297, 210)
	w, h := m.Size()
	if w != 594 || h != 420 {
		t.Errorf("Size() = %d×%d, want 594×420", w, h)
	}

	m = New(2, 11, 5)
	if w, h := m.Size(); w != 5 || h != 2 {
		t.Errorf("Size() = %d×%d, want 5×2 (floored)", w, h)
	}
	if m.PaintedRatio() != 0 {
		t.Error("new mask should be empty")
	}
}

func TestPaintPolygonConsistency(t *testing.T) {
	m := New(0.5, 297, 210)
	p := geom.Rect(50, 50, 150, 120)
	m.PaintPolygon(p, true)

	if !m.IsPainted(p.Centroid()) {
		t.Error("centroid of painted polygon should be painted")
	}
	if m.IsPainted(geom.Pt(250, 10)) {
		t.Error("point far outside the polygon should not be painted")
	}
	if m.IsPainted(geom.Pt(-5, 60)) || m.IsPainted(geom.Pt(100, 400)) {
		t.Error("points outside the canvas are never painted")
	}
}

func TestPaintPolygonHole(t *testing.T) {
	m := New(1, 100, 100)
	m.PaintPolygon(geom.Rect(10, 10, 90, 90), true)
	m.PaintPolygon(geom.Rect(40, 40, 60, 60), false)

	if m.IsPainted(geom.Pt(50, 50)) {
		t.Error("hole should be unpainted")
	}
	if !m.IsPainted(geom.Pt(20, 20)) {
		t.Error("area outside the hole should stay painted")
	}
}

func TestPaintClampsToGrid(t *testing.T) {
	m := New(1, 20, 20)
	// Bigger than the canvas on every side; must not panic.
	m.PaintPolygon(geom.Rect(-50, -50, 80, 80), true)
	m.PaintCircle(geom.Pt(25, 25), 100)
	if got := m.PaintedRatio(); got != 1 {
		t.Errorf("PaintedRatio() = %v, want 1", got)
	}
}

func TestPaintCircle(t *testing.T) {
	m := New(0.5, 100, 100)
	m.PaintCircle(geom.Pt(50, 50), 10)

	if !m.IsPainted(geom.Pt(50, 50)) || !m.IsPainted(geom.Pt(55, 55)) {
		t.Error("points inside the circle should be painted")
	}
	if m.IsPainted(geom.Pt(58, 58)) {
		t.Error("point outside the circle should not be painted")
	}
}

func TestPaintSegment(t *testing.T) {
	m := New(0.25, 100, 100)
	m.PaintSegment(geom.Pt(10, 50), geom.Pt(90, 50), 2)

	if !m.IsPainted(geom.Pt(50, 50.5)) || !m.IsPainted(geom.Pt(50, 49.5)) {
		t.Error("points within the stroke should be painted")
	}
	if m.IsPainted(geom.Pt(50, 52)) || m.IsPainted(geom.Pt(95, 50)) {
		t.Error("points beyond the stroke should not be painted")
	}
}

func TestMirrorVertically(t *testing.T) {
	m := New(1, 10, 10)
	paintCell(m, 2, 1)
	m.MirrorVertically()

	if !m.IsPainted(cellCenter(2, 1)) {
		t.Error("original cell should stay painted")
	}
	if !m.IsPainted(cellCenter(2, 8)) {
		t.Error("mirrored cell (2, 8) should be painted")
	}
	if m.IsPainted(cellCenter(7, 8)) {
		t.Error("mirroring must not flip columns")
	}
}

func TestOffsetVertically(t *testing.T) {
	m := New(1, 10, 10)
	paintCell(m, 2, 1)
	m.OffsetVertically(3)

	if !m.IsPainted(cellCenter(2, 1)) || !m.IsPainted(cellCenter(2, 4)) {
		t.Error("offset should OR the shifted copy into the grid")
	}
	if m.IsPainted(cellCenter(2, 2)) {
		t.Error("cells between source and offset should stay empty")
	}

	m.OffsetVertically(-20) // entirely off-grid: no change, no panic
	if got := m.PaintedRatio(); got != 0.02 {
		t.Errorf("PaintedRatio() = %v, want 0.02", got)
	}
}

func TestGrow(t *testing.T) {
	m := New(1, 11, 11)
	paintCell(m, 5, 5)
	m.Grow(1)

	for _, c := range [][2]int{{4, 4}, {5, 4}, {6, 6}, {4, 6}} {
		if !m.IsPainted(cellCenter(c[0], c[1])) {
			t.Errorf("cell %v should be painted after Grow(1)", c)
		}
	}
	if m.IsPainted(cellCenter(7, 5)) {
		t.Error("Grow(1) should not reach two cells away")
	}
}

func TestClone(t *testing.T) {
	m := New(1, 10, 10)
	c := m.Clone()
	paintCell(c, 3, 3)
	if m.IsPainted(cellCenter(3, 3)) {
		t.Error("painting a clone must not affect the original")
	}
}
