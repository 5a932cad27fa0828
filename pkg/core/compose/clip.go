package compose

import (
	"math"

	"github.com/gre/shattered/pkg/core/geom"
)

// Clipper splits polylines where they enter forbidden area. Forbidden
// reports whether a point must not be drawn.
type Clipper struct {
	Forbidden  func(geom.Point) bool
	Step       float64 // sampling resolution along each segment (mm)
	Iterations int     // bisection steps per crossing
}

// Clip walks pts at Step resolution and returns the allowed stretches.
// Original vertices are kept as is; each crossing is located by bisection
// and replaced with the last allowed point found. A polyline that is allowed
// everywhere comes back unchanged.
func (c Clipper) Clip(pts []geom.Point) [][]geom.Point {
	if len(pts) < 2 {
		return nil
	}
	step := c.Step
	if step <= 0 {
		step = 0.5
	}

	var out [][]geom.Point
	var cur []geom.Point
	flush := func() {
		if len(cur) >= 2 {
			out = append(out, cur)
		}
		cur = nil
	}

	prev := pts[0]
	prevOK := !c.Forbidden(prev)
	if prevOK {
		cur = append(cur, prev)
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		n := max(1, int(math.Ceil(geom.Dist(a, b)/step)))
		for k := 1; k <= n; k++ {
			q := b
			if k < n {
				q = geom.Lerp(a, b, float64(k)/float64(n))
			}
			ok := !c.Forbidden(q)
			switch {
			case prevOK && !ok:
				cur = append(cur, c.crossing(prev, q))
				flush()
			case !prevOK && ok:
				cur = append(cur, c.crossing(q, prev))
			}
			if ok && k == n {
				cur = append(cur, q)
			}
			prev, prevOK = q, ok
		}
	}
	flush()
	return out
}

// crossing bisects between an allowed point and a forbidden one and returns
// the allowed end of the final bracket.
func (c Clipper) crossing(allowed, forbidden geom.Point) geom.Point {
	for i := 0; i < c.Iterations; i++ {
		mid := geom.Lerp(allowed, forbidden, 0.5)
		if c.Forbidden(mid) {
			forbidden = mid
		} else {
			allowed = mid
		}
	}
	return allowed
}
