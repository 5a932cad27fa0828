package compose

import (
	"math"
	"slices"

	"github.com/gre/shattered/pkg/core/geom"
	"github.com/gre/shattered/pkg/core/subdivide"
)

// samples returns round((c + k·area^e)·density), at least 1.
func samples(area, c, k, e, density float64) int {
	return max(1, int(math.Round((c+k*math.Pow(area, e))*density)))
}

// fill returns the outline and fill polylines of a leaf, unclipped.
func (c *Composer) fill(l subdivide.LeafShape) [][]geom.Point {
	poly := l.Polygon
	if len(poly.Vertices()) < 3 {
		return nil
	}
	lines := [][]geom.Point{append([]geom.Point(nil), poly...)}

	switch l.FillStyle {
	case subdivide.Plain:
	case subdivide.Spiral:
		lines = append(lines, c.spiral(poly))
	case subdivide.Web:
		lines = append(lines, c.web(poly)...)
	case subdivide.PingPong:
		lines = append(lines, c.pingPong(poly))
	case subdivide.Scratches:
		lines = append(lines, c.scratches(poly)...)
	case subdivide.Hatch:
		lines = append(lines, c.hatch(poly)...)
	case subdivide.Stippling:
		lines = append(lines, c.stippling(poly)...)
	case subdivide.Zigzag:
		lines = append(lines, c.zigzag(poly))
	case subdivide.Full:
		lines = append(lines, c.full(poly))
	case subdivide.Concentric:
		lines = append(lines, c.concentric(poly)...)
	}

	out := lines[:0]
	for _, ln := range lines {
		if len(ln) >= 2 {
			out = append(out, ln)
		}
	}
	return out
}

// interior draws a uniform point inside poly by rejection from its bounds,
// falling back to the centroid.
func (c *Composer) interior(poly geom.Polygon) geom.Point {
	b := poly.Bounds()
	for range 32 {
		p := geom.Pt(c.rng.Range(b.LLx, b.URx), c.rng.Range(b.LLy, b.URy))
		if poly.Contains(p) {
			return p
		}
	}
	return poly.Centroid()
}

// spiral visits random interior points greedily from the bottom-most one:
// each step goes to the remaining point that is nearest once its angular
// advance around the centroid is weighed in, so the walk keeps turning the
// same way and winds inward like a spiral.
func (c *Composer) spiral(poly geom.Polygon) []geom.Point {
	n := samples(poly.Area(), 4, 0.6, 0.5, c.opts.Density)
	center := poly.Centroid()

	rest := make([]geom.Point, n)
	rmax := 0.0
	bottom := 0
	for i := range rest {
		rest[i] = c.interior(poly)
		rmax = math.Max(rmax, geom.Dist(center, rest[i]))
		if rest[i].Y > rest[bottom].Y {
			bottom = i
		}
	}
	if rmax == 0 {
		return nil
	}

	out := make([]geom.Point, 0, n)
	cur := rest[bottom]
	rest = slices.Delete(rest, bottom, bottom+1)
	out = append(out, cur)
	for len(rest) > 0 {
		from := angleOf(cur.Sub(center))
		best, bestCost := 0, math.Inf(1)
		for i, p := range rest {
			advance := math.Mod(angleOf(p.Sub(center))-from+4*math.Pi, 2*math.Pi)
			if cost := geom.Dist(cur, p) + rmax*advance; cost < bestCost {
				best, bestCost = i, cost
			}
		}
		cur = rest[best]
		rest = slices.Delete(rest, best, best+1)
		out = append(out, cur)
	}
	return out
}

// web connects jittered edge points in shuffled order, breaking the line
// whenever a jump would cross one of a few avoidance circles.
func (c *Composer) web(poly geom.Polygon) [][]geom.Point {
	area := poly.Area()
	n := samples(area, 6, 0.5, 0.5, c.opts.Density)
	center := poly.Centroid()

	pts := make([]geom.Point, n)
	for i := range pts {
		p := poly.PointAt(c.rng.Float())
		if d := geom.Dist(p, center); d > 0 {
			p = geom.Lerp(p, center, math.Min(1, c.rng.Range(0.5, 1.5)/d))
		}
		pts[i] = p
	}
	c.rng.Shuffle(len(pts), func(i, j int) { pts[i], pts[j] = pts[j], pts[i] })

	type circle struct {
		p geom.Point
		r float64
	}
	holes := make([]circle, samples(area, 0, 0.02, 0.5, 1))
	for i := range holes {
		holes[i] = circle{c.interior(poly), c.rng.Range(0.5, 0.15*math.Sqrt(area))}
	}
	blocked := func(a, b geom.Point) bool {
		for _, h := range holes {
			if segmentPointDist(a, b, h.p) < h.r {
				return true
			}
		}
		return false
	}

	var out [][]geom.Point
	cur := []geom.Point{pts[0]}
	for _, p := range pts[1:] {
		if blocked(cur[len(cur)-1], p) {
			out = append(out, cur)
			cur = nil
		}
		cur = append(cur, p)
	}
	return append(out, cur)
}

// pingPong bounces between the two halves of the outline.
func (c *Composer) pingPong(poly geom.Polygon) []geom.Point {
	n := samples(poly.Area(), 3, 0.4, 0.5, c.opts.Density)
	offset := c.rng.Float()
	a := make([]float64, n)
	b := make([]float64, n)
	for i := range a {
		a[i] = c.rng.Random(0.5)
		b[i] = 0.5 + c.rng.Random(0.5)
	}
	slices.Sort(a)
	slices.Sort(b)

	pts := make([]geom.Point, 0, 2*n)
	for i := range a {
		pts = append(pts,
			poly.PointAt(math.Mod(a[i]+offset, 1)),
			poly.PointAt(math.Mod(b[n-1-i]+offset, 1)))
	}
	return pts
}

// scratches lays short strokes at a common angle.
func (c *Composer) scratches(poly geom.Polygon) [][]geom.Point {
	n := samples(poly.Area(), 2, 0.05, 0.8, c.opts.Density)
	angle := c.rng.Random(math.Pi)
	var out [][]geom.Point
	for range n {
		p := c.interior(poly)
		d := geom.Unit(angle + c.rng.Range(-0.2, 0.2)).Mul(c.rng.Range(1, 4) / 2)
		for _, s := range poly.ClipSegment(p.Sub(d), p.Add(d)) {
			out = append(out, []geom.Point{s.A, s.B})
		}
	}
	return out
}

// hatch fills with parallel strokes at a random angle.
func (c *Composer) hatch(poly geom.Polygon) [][]geom.Point {
	angle := c.rng.Random(math.Pi)
	spacing := c.rng.Range(1, 2.5) / c.opts.Density
	var out [][]geom.Point
	for _, s := range scanlines(poly, angle, spacing) {
		out = append(out, []geom.Point{s.A, s.B})
	}
	return out
}

// stippling places dots, each a pen-width dash.
func (c *Composer) stippling(poly geom.Polygon) [][]geom.Point {
	n := samples(poly.Area(), 5, 0.2, 0.7, c.opts.Density)
	dash := geom.Pt(c.opts.PenWidth/2, 0)
	out := make([][]geom.Point, n)
	for i := range out {
		p := c.interior(poly)
		out[i] = []geom.Point{p, p.Add(dash)}
	}
	return out
}

// zigzag connects alternate scanlines into a single stroke.
func (c *Composer) zigzag(poly geom.Polygon) []geom.Point {
	lines := samples(poly.Area(), 2, 0.25, 0.5, c.opts.Density)
	b := poly.Bounds()
	spacing := math.Max(c.opts.PenWidth, math.Max(b.URx-b.LLx, b.URy-b.LLy)/float64(lines))
	return boustrophedon(scanlines(poly, c.rng.Random(math.Pi), spacing))
}

// full inks the whole polygon with pen-width spaced back-and-forth strokes.
func (c *Composer) full(poly geom.Polygon) []geom.Point {
	return boustrophedon(scanlines(poly, c.rng.Random(math.Pi), c.opts.PenWidth))
}

// concentric draws shrinking copies of the outline around its centroid.
func (c *Composer) concentric(poly geom.Polygon) [][]geom.Point {
	center := poly.Centroid()
	spacing := c.rng.Range(1, 2.5) / c.opts.Density
	rings := int(math.Sqrt(poly.Area()) / (2 * spacing))
	out := make([][]geom.Point, 0, rings)
	for k := 1; k <= rings; k++ {
		ring := poly.Scale(center, 1-float64(k)/float64(rings+1))
		out = append(out, ring)
	}
	return out
}

// scanlines cuts poly with parallel lines at angle, spacing apart.
func scanlines(poly geom.Polygon, angle, spacing float64) []geom.Segment {
	if spacing <= 0 {
		return nil
	}
	center := poly.Centroid()
	flat := poly.Rotate(center, -angle)
	b := flat.Bounds()

	var out []geom.Segment
	n := steps(math.Ceil((b.URy-b.LLy)/spacing - 0.5))
	for i := range n {
		y := b.LLy + spacing/2 + float64(i)*spacing
		for _, s := range flat.ClipSegment(geom.Pt(b.LLx-1, y), geom.Pt(b.URx+1, y)) {
			out = append(out, geom.Segment{
				A: geom.Rotate(s.A, center, angle),
				B: geom.Rotate(s.B, center, angle),
			})
		}
	}
	return out
}

// boustrophedon chains segments into one polyline, reversing every other.
func boustrophedon(segs []geom.Segment) []geom.Point {
	pts := make([]geom.Point, 0, 2*len(segs))
	for i, s := range segs {
		if i%2 == 0 {
			pts = append(pts, s.A, s.B)
		} else {
			pts = append(pts, s.B, s.A)
		}
	}
	return pts
}

// circle approximates a circle with chords of at most 0.5 mm.
func circle(center geom.Point, r float64) []geom.Point {
	n := max(16, int(math.Ceil(2*math.Pi*r/0.5)))
	pts := make([]geom.Point, n+1)
	for i := range n {
		pts[i] = center.Add(geom.Unit(2 * math.Pi * float64(i) / float64(n)).Mul(r))
	}
	pts[n] = pts[0]
	return pts
}

// maxSteps bounds every stepped stroke loop.
const maxSteps = 1 << 17

// steps converts a float iteration count to a loop bound in [0, maxSteps].
func steps(n float64) int {
	if !(n > 0) {
		return 0
	}
	return int(math.Min(n, maxSteps))
}

func angleOf(v geom.Point) float64 { return math.Atan2(v.Y, v.X) }

func segmentPointDist(a, b, p geom.Point) float64 {
	d := b.Sub(a)
	l2 := d.Dot(d)
	if l2 == 0 {
		return geom.Dist(a, p)
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(d)/l2))
	return geom.Dist(a.Add(d.Mul(t)), p)
}
