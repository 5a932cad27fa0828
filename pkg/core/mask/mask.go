// Package mask implements PaintMask, a coarse occupancy grid over the canvas
// that records where ink has already been laid down.
//
// The route composer paints every placed shape into the mask and clips later
// strokes against it, so a pen plotter never draws over an area twice. The
// grid is fixed at construction; every operation clamps to the grid and runs
// in time proportional to the bounding box it touches.
package mask

import (
	"math"

	"github.com/gre/shattered/pkg/core/geom"
)

// PaintMask is a uniform boolean grid with cell size Precision (mm).
type PaintMask struct {
	precision     float64
	width, height float64
	w, h          int
	cells         []bool
}

// New allocates an empty mask of floor(width/precision) × floor(height/precision)
// cells.
func New(precision, width, height float64) *PaintMask {
	w := int(math.Floor(width / precision))
	h := int(math.Floor(height / precision))
	w, h = max(w, 0), max(h, 0)
	return &PaintMask{
		precision: precision,
		width:     width,
		height:    height,
		w:         w,
		h:         h,
		cells:     make([]bool, w*h),
	}
}

// Precision returns the cell size in mm.
func (m *PaintMask) Precision() float64 { return m.precision }

// Size returns the grid dimensions in cells.
func (m *PaintMask) Size() (w, h int) { return m.w, m.h }

// Clone returns an independent copy.
func (m *PaintMask) Clone() *PaintMask {
	c := *m
	c.cells = append([]bool(nil), m.cells...)
	return &c
}

// IsPainted reports whether the cell covering p is painted. Points outside
// [0,width) × [0,height) are never painted.
func (m *PaintMask) IsPainted(p geom.Point) bool {
	if p.X < 0 || p.Y < 0 || p.X >= m.width || p.Y >= m.height {
		return false
	}
	x := int(p.X / m.precision)
	y := int(p.Y / m.precision)
	if x >= m.w || y >= m.h {
		return false
	}
	return m.cells[y*m.w+x]
}

// cellRange converts a bounding box to an inclusive cell range clamped to
// the grid. ok is false when the box misses the grid.
func (m *PaintMask) cellRange(b geom.Bounds) (x0, y0, x1, y1 int, ok bool) {
	x0 = max(0, int(math.Floor(b.LLx/m.precision)))
	y0 = max(0, int(math.Floor(b.LLy/m.precision)))
	x1 = min(m.w-1, int(math.Ceil(b.URx/m.precision)))
	y1 = min(m.h-1, int(math.Ceil(b.URy/m.precision)))
	return x0, y0, x1, y1, x0 <= x1 && y0 <= y1
}

// PaintPolygon sets every cell whose top-left sample point lies inside poly
// to value. Painting with value=false digs a hole.
func (m *PaintMask) PaintPolygon(poly geom.Polygon, value bool) {
	if len(poly) < 3 {
		return
	}
	x0, y0, x1, y1, ok := m.cellRange(poly.Bounds())
	if !ok {
		return
	}
	for y := y0; y <= y1; y++ {
		row := m.cells[y*m.w : (y+1)*m.w]
		py := float64(y) * m.precision
		for x := x0; x <= x1; x++ {
			if poly.Contains(geom.Pt(float64(x)*m.precision, py)) {
				row[x] = value
			}
		}
	}
}

// PaintCircle paints every cell whose top-left sample point lies within
// radius of center.
func (m *PaintMask) PaintCircle(center geom.Point, radius float64) {
	b := geom.Bounds{LLx: center.X - radius, LLy: center.Y - radius, URx: center.X + radius, URy: center.Y + radius}
	x0, y0, x1, y1, ok := m.cellRange(b)
	if !ok {
		return
	}
	r2 := radius * radius
	for y := y0; y <= y1; y++ {
		dy := float64(y)*m.precision - center.Y
		for x := x0; x <= x1; x++ {
			dx := float64(x)*m.precision - center.X
			if dx*dx+dy*dy < r2 {
				m.cells[y*m.w+x] = true
			}
		}
	}
}

// PaintSegment paints the strokeWidth-thick rectangle around from→to.
func (m *PaintMask) PaintSegment(from, to geom.Point, strokeWidth float64) {
	n := geom.Normalize(to.Sub(from))
	if n == (geom.Point{}) {
		m.PaintCircle(from, strokeWidth/2)
		return
	}
	off := geom.Pt(-n.Y, n.X).Mul(strokeWidth / 2)
	m.PaintPolygon(geom.Close([]geom.Point{
		from.Add(off), to.Add(off), to.Sub(off), from.Sub(off),
	}), true)
}

// MirrorVertically ORs every cell with the cell on the mirrored row h-1-y,
// making the painted area symmetric about the horizontal mid-line.
func (m *PaintMask) MirrorVertically() {
	src := append([]bool(nil), m.cells...)
	for y := 0; y < m.h; y++ {
		my := m.h - 1 - y
		for x := 0; x < m.w; x++ {
			if src[my*m.w+x] {
				m.cells[y*m.w+x] = true
			}
		}
	}
}

// OffsetVertically ORs every cell (x, y) with the cell (x, y-delta), which
// extends the painted area by delta rows downward (upward for negative
// delta).
func (m *PaintMask) OffsetVertically(delta int) {
	if delta == 0 {
		return
	}
	src := append([]bool(nil), m.cells...)
	for y := 0; y < m.h; y++ {
		sy := y - delta
		if sy < 0 || sy >= m.h {
			continue
		}
		for x := 0; x < m.w; x++ {
			if src[sy*m.w+x] {
				m.cells[y*m.w+x] = true
			}
		}
	}
}

// OffsetHorizontally is the column-wise counterpart of OffsetVertically.
func (m *PaintMask) OffsetHorizontally(delta int) {
	if delta == 0 {
		return
	}
	src := append([]bool(nil), m.cells...)
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			sx := x - delta
			if sx < 0 || sx >= m.w {
				continue
			}
			if src[y*m.w+sx] {
				m.cells[y*m.w+x] = true
			}
		}
	}
}

// Grow dilates the painted area by cells in the four axis directions.
func (m *PaintMask) Grow(cells int) {
	for i := 0; i < cells; i++ {
		m.OffsetVertically(1)
		m.OffsetVertically(-1)
		m.OffsetHorizontally(1)
		m.OffsetHorizontally(-1)
	}
}

// PaintedRatio returns the fraction of painted cells.
func (m *PaintMask) PaintedRatio() float64 {
	if len(m.cells) == 0 {
		return 0
	}
	n := 0
	for _, c := range m.cells {
		if c {
			n++
		}
	}
	return float64(n) / float64(len(m.cells))
}
