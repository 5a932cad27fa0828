// Package geom provides the polygon and polyline geometry shared by the
// subdivision engine, the paint mask and the route composer.
//
// Coordinates are millimetres on the canvas with the y axis pointing down,
// matching SVG. Points are [vec.Vec2] values from seehuhn.de/go/geom, so the
// usual vector arithmetic (Add, Sub, Mul, Dot, Length) is available on them.
//
// A [Polygon] is closed: its last point repeats the first. All functions in
// this package treat polygons as values and never modify their input.
package geom

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Point is a canvas position in millimetres.
type Point = vec.Vec2

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Bounds is an axis-aligned box. With the y axis pointing down, LLy holds
// the minimum y and URy the maximum y.
type Bounds = rect.Rect

// epsilon bounds what counts as a degenerate length or area.
const epsilon = 1e-9

// Dist returns the euclidean distance between a and b.
func Dist(a, b Point) float64 { return b.Sub(a).Length() }

// Lerp interpolates between a (t=0) and b (t=1).
func Lerp(a, b Point, t float64) Point {
	return a.Add(b.Sub(a).Mul(t))
}

// Unit returns the unit vector at angle (radians).
func Unit(angle float64) Point {
	return Point{X: math.Cos(angle), Y: math.Sin(angle)}
}

// Normalize returns v scaled to unit length, or the zero vector when v is
// too short to have a direction.
func Normalize(v Point) Point {
	l := v.Length()
	if l < epsilon {
		return Point{}
	}
	return v.Mul(1 / l)
}

// Cross returns the z component of the 2D cross product a × b.
func Cross(a, b Point) float64 { return a.X*b.Y - a.Y*b.X }

// Rotate turns p around center by angle radians.
func Rotate(p, center Point, angle float64) Point {
	s, c := math.Sincos(angle)
	d := p.Sub(center)
	return Point{X: center.X + d.X*c - d.Y*s, Y: center.Y + d.X*s + d.Y*c}
}

// PolylineLength returns the total length of an open polyline.
func PolylineLength(pts []Point) float64 {
	var l float64
	for i := 1; i < len(pts); i++ {
		l += Dist(pts[i-1], pts[i])
	}
	return l
}

// InBounds reports whether p lies inside b, borders included.
func InBounds(b Bounds, p Point) bool {
	return p.X >= b.LLx && p.X <= b.URx && p.Y >= b.LLy && p.Y <= b.URy
}

// Inset shrinks b by d on every side.
func Inset(b Bounds, d float64) Bounds {
	return Bounds{LLx: b.LLx + d, LLy: b.LLy + d, URx: b.URx - d, URy: b.URy - d}
}
