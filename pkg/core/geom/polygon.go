package geom

import (
	"cmp"
	"math"
	"slices"
)

// Polygon is a closed ring of points; the last point repeats the first.
type Polygon []Point

// Rect returns the closed rectangle polygon spanning (x0, y0)-(x1, y1).
func Rect(x0, y0, x1, y1 float64) Polygon {
	return Polygon{Pt(x0, y0), Pt(x1, y0), Pt(x1, y1), Pt(x0, y1), Pt(x0, y0)}
}

// FromBounds returns the rectangle polygon of b.
func FromBounds(b Bounds) Polygon { return Rect(b.LLx, b.LLy, b.URx, b.URy) }

// Close returns pts as a closed polygon, appending the first point when the
// ring is open.
func Close(pts []Point) Polygon {
	if len(pts) == 0 {
		return nil
	}
	out := Polygon(slices.Clone(pts))
	if out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return out
}

// Vertices returns the distinct ring points, without the closing repeat.
func (p Polygon) Vertices() []Point {
	if len(p) > 1 && p[0] == p[len(p)-1] {
		return p[:len(p)-1]
	}
	return p
}

// SignedArea returns the shoelace area; positive for clockwise rings on a
// y-down canvas.
func (p Polygon) SignedArea() float64 {
	v := p.Vertices()
	var a float64
	for i := range v {
		j := (i + 1) % len(v)
		a += v[i].X*v[j].Y - v[j].X*v[i].Y
	}
	return a / 2
}

// Area returns the absolute polygon area in mm².
func (p Polygon) Area() float64 { return math.Abs(p.SignedArea()) }

// Centroid returns the area centroid, falling back to the vertex mean for
// degenerate rings.
func (p Polygon) Centroid() Point {
	v := p.Vertices()
	if len(v) == 0 {
		return Point{}
	}
	a := p.SignedArea()
	if math.Abs(a) < epsilon {
		var sum Point
		for _, q := range v {
			sum = sum.Add(q)
		}
		return sum.Mul(1 / float64(len(v)))
	}
	var cx, cy float64
	for i := range v {
		j := (i + 1) % len(v)
		f := v[i].X*v[j].Y - v[j].X*v[i].Y
		cx += (v[i].X + v[j].X) * f
		cy += (v[i].Y + v[j].Y) * f
	}
	return Pt(cx/(6*a), cy/(6*a))
}

// Bounds returns the axis-aligned bounding box.
func (p Polygon) Bounds() Bounds {
	if len(p) == 0 {
		return Bounds{}
	}
	b := Bounds{LLx: p[0].X, LLy: p[0].Y, URx: p[0].X, URy: p[0].Y}
	for _, q := range p[1:] {
		b.LLx = min(b.LLx, q.X)
		b.LLy = min(b.LLy, q.Y)
		b.URx = max(b.URx, q.X)
		b.URy = max(b.URy, q.Y)
	}
	return b
}

// Perimeter returns the ring length.
func (p Polygon) Perimeter() float64 { return PolylineLength(p) }

// Contains reports whether pt is inside the polygon using even-odd ray
// casting.
func (p Polygon) Contains(pt Point) bool {
	v := p.Vertices()
	inside := false
	for i, j := 0, len(v)-1; i < len(v); j, i = i, i+1 {
		a, b := v[i], v[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) &&
			pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// Translate returns the polygon moved by d.
func (p Polygon) Translate(d Point) Polygon {
	out := make(Polygon, len(p))
	for i, q := range p {
		out[i] = q.Add(d)
	}
	return out
}

// Rotate returns the polygon turned around center by angle radians.
func (p Polygon) Rotate(center Point, angle float64) Polygon {
	out := make(Polygon, len(p))
	for i, q := range p {
		out[i] = Rotate(q, center, angle)
	}
	return out
}

// Scale returns the polygon scaled by f around center.
func (p Polygon) Scale(center Point, f float64) Polygon {
	out := make(Polygon, len(p))
	for i, q := range p {
		out[i] = center.Add(q.Sub(center).Mul(f))
	}
	return out
}

// MirrorY reflects the polygon across the horizontal line y = h/2.
func (p Polygon) MirrorY(h float64) Polygon {
	out := make(Polygon, len(p))
	for i, q := range p {
		out[i] = Pt(q.X, h-q.Y)
	}
	return out
}

// PointAt returns the point at arc length t·Perimeter along the ring,
// t in [0, 1].
func (p Polygon) PointAt(t float64) Point {
	total := p.Perimeter()
	if total < epsilon {
		return p.Centroid()
	}
	target := t * total
	for i := 1; i < len(p); i++ {
		l := Dist(p[i-1], p[i])
		if target <= l && l > 0 {
			return Lerp(p[i-1], p[i], target/l)
		}
		target -= l
	}
	return p[len(p)-1]
}

// Split cuts the polygon with the infinite line through pivot at angle.
// It returns two pieces when the line crosses the polygon and a single
// piece (the input) otherwise. Pieces are exact for convex input.
func (p Polygon) Split(pivot Point, angle float64) []Polygon {
	dir := Unit(angle)
	side := func(q Point) float64 { return Cross(dir, q.Sub(pivot)) }

	left := p.clipHalfPlane(side, 1)
	right := p.clipHalfPlane(side, -1)
	if left.Area() < epsilon || right.Area() < epsilon {
		return []Polygon{p}
	}
	return []Polygon{left, right}
}

// clipHalfPlane keeps the part of the polygon where sign·side(q) >= 0
// (Sutherland-Hodgman against a single edge).
func (p Polygon) clipHalfPlane(side func(Point) float64, sign float64) Polygon {
	v := p.Vertices()
	if len(v) < 3 {
		return nil
	}
	var out []Point
	for i := range v {
		cur, next := v[i], v[(i+1)%len(v)]
		sc, sn := sign*side(cur), sign*side(next)
		if sc >= 0 {
			out = append(out, cur)
		}
		if (sc >= 0) != (sn >= 0) {
			t := sc / (sc - sn)
			out = append(out, Lerp(cur, next, t))
		}
	}
	if len(out) < 3 {
		return nil
	}
	return Close(out)
}

// ClipBounds returns the part of a convex polygon inside b, or nil when
// they do not overlap.
func (p Polygon) ClipBounds(b Bounds) Polygon {
	edges := []func(Point) float64{
		func(q Point) float64 { return q.X - b.LLx },
		func(q Point) float64 { return b.URx - q.X },
		func(q Point) float64 { return q.Y - b.LLy },
		func(q Point) float64 { return b.URy - q.Y },
	}
	out := p
	for _, e := range edges {
		out = out.clipHalfPlane(e, 1)
		if out == nil {
			return nil
		}
	}
	return out
}

// Segment is a straight stroke from A to B.
type Segment struct {
	A, B Point
}

// ClipSegment returns the parts of a→b that lie inside the polygon, ordered
// from a to b. Works for concave polygons.
func (p Polygon) ClipSegment(a, b Point) []Segment {
	d := b.Sub(a)
	if d.Length() < epsilon {
		return nil
	}
	ts := []float64{0, 1}
	for i := 1; i < len(p); i++ {
		e0, e1 := p[i-1], p[i]
		e := e1.Sub(e0)
		den := Cross(d, e)
		if math.Abs(den) < epsilon {
			continue
		}
		w := e0.Sub(a)
		t := Cross(w, e) / den
		u := Cross(w, d) / den
		if t > 0 && t < 1 && u >= 0 && u <= 1 {
			ts = append(ts, t)
		}
	}
	slices.SortFunc(ts, cmp.Compare[float64])

	var out []Segment
	for i := 1; i < len(ts); i++ {
		t0, t1 := ts[i-1], ts[i]
		if t1-t0 < epsilon {
			continue
		}
		mid := a.Add(d.Mul((t0 + t1) / 2))
		if !p.Contains(mid) {
			continue
		}
		s := Segment{A: a.Add(d.Mul(t0)), B: a.Add(d.Mul(t1))}
		if n := len(out); n > 0 && out[n-1].B == s.A {
			out[n-1].B = s.B
			continue
		}
		out = append(out, s)
	}
	return out
}
