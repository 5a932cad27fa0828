// Package compose turns subdivision leaves into plottable routes.
//
// Each leaf is outlined and filled according to its [subdivide.FillStyle].
// Every polyline is then clipped against a [mask.PaintMask] recording the
// ink already laid down, and against the padded canvas frame, before the
// leaf itself is painted into the mask. Later leaves therefore never draw
// over earlier ones, and every emitted point lies inside the frame.
//
// A Composer owns its mask and is meant for a single Compose call.
package compose

import (
	"math"

	"github.com/gre/shattered/pkg/core/geom"
	"github.com/gre/shattered/pkg/core/mask"
	"github.com/gre/shattered/pkg/core/rng"
	"github.com/gre/shattered/pkg/core/subdivide"
)

// Route is a polyline drawn with one palette colour.
type Route struct {
	ColorIndex int          `json:"color"`
	Points     []geom.Point `json:"points"`
}

// Sun is a disc drawn as concentric circles before the fragments, which
// then pass behind it.
type Sun struct {
	Center     geom.Point `json:"center"`
	Radius     float64    `json:"radius"`
	ColorIndex int        `json:"color"`
}

// Background hatches the gaps between fragments with horizontal strokes,
// kept Margin mm away from inked area.
type Background struct {
	ColorIndex int     `json:"color"`
	Spacing    float64 `json:"spacing"`
	Margin     float64 `json:"margin"`
}

// Options configures a Composer.
type Options struct {
	Width, Height float64 // canvas (mm)
	Pad           float64 // frame padding (mm)
	PenWidth      float64
	Precision     float64 // mask cell size (mm)

	ClipStep       float64
	ClipIterations int

	// Density scales every sample count and stroke spacing.
	Density float64

	Sun        *Sun
	Symmetric  bool
	Background *Background
}

// DefaultOptions returns options for an A4 landscape sheet.
func DefaultOptions() Options {
	return Options{
		Width:          297,
		Height:         210,
		Pad:            10,
		PenWidth:       0.35,
		Precision:      0.5,
		ClipStep:       0.5,
		ClipIterations: 4,
		Density:        1,
	}
}

// Frame returns the padded drawing area.
func (o Options) Frame() geom.Bounds {
	return geom.Inset(geom.Bounds{URx: o.Width, URy: o.Height}, o.Pad)
}

// Composer converts leaves to routes.
type Composer struct {
	rng   *rng.RNG
	opts  Options
	mask  *mask.PaintMask
	frame geom.Bounds
}

// New returns a Composer with an empty mask. Zero option fields take their
// [DefaultOptions] values, except Pad.
func New(r *rng.RNG, opts Options) *Composer {
	d := DefaultOptions()
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = d.Width, d.Height
	}
	if opts.PenWidth <= 0 {
		opts.PenWidth = d.PenWidth
	}
	if opts.Precision <= 0 {
		opts.Precision = d.Precision
	}
	if opts.ClipStep <= 0 {
		opts.ClipStep = d.ClipStep
	}
	if opts.ClipIterations <= 0 {
		opts.ClipIterations = d.ClipIterations
	}
	if opts.Density <= 0 {
		opts.Density = d.Density
	}
	return &Composer{
		rng:   r,
		opts:  opts,
		mask:  mask.New(opts.Precision, opts.Width, opts.Height),
		frame: opts.Frame(),
	}
}

// Mask returns the composer's paint mask.
func (c *Composer) Mask() *mask.PaintMask { return c.mask }

// Compose returns the clipped routes of all leaves, in leaf order, preceded
// by the sun and followed by the background when configured.
func (c *Composer) Compose(leaves []subdivide.LeafShape) []Route {
	var routes []Route

	if s := c.opts.Sun; s != nil && s.Radius > 0 {
		step := 2 * c.opts.PenWidth / c.opts.Density
		for i := range steps(math.Ceil((s.Radius - c.opts.PenWidth) / step)) {
			r := s.Radius - float64(i)*step
			routes = append(routes, c.clipLine(circle(s.Center, r), s.ColorIndex)...)
		}
		c.mask.PaintCircle(s.Center, s.Radius+c.opts.PenWidth)
	}

	for _, l := range leaves {
		for _, line := range c.fill(l) {
			routes = append(routes, c.clipLine(line, l.ColorIndex)...)
		}
		c.paintLeaf(l.Polygon)
	}

	if c.opts.Symmetric {
		h := c.opts.Height
		n := len(routes)
		for _, r := range routes[:n] {
			pts := make([]geom.Point, len(r.Points))
			for i, p := range r.Points {
				pts[i] = geom.Pt(p.X, h-p.Y)
			}
			routes = append(routes, Route{ColorIndex: r.ColorIndex, Points: pts})
		}
		c.mask.MirrorVertically()
	}

	if bg := c.opts.Background; bg != nil && bg.Spacing > 0 {
		routes = append(routes, c.background(*bg)...)
	}
	return routes
}

// Clip clips a polyline against the mask and the frame.
func (c *Composer) Clip(pts []geom.Point) [][]geom.Point {
	return c.clipper(c.forbidden).Clip(pts)
}

func (c *Composer) clipLine(pts []geom.Point, color int) []Route {
	var out []Route
	for _, part := range c.Clip(pts) {
		out = append(out, Route{ColorIndex: color, Points: part})
	}
	return out
}

func (c *Composer) clipper(forbidden func(geom.Point) bool) Clipper {
	return Clipper{Forbidden: forbidden, Step: c.opts.ClipStep, Iterations: c.opts.ClipIterations}
}

func (c *Composer) forbidden(p geom.Point) bool {
	if !geom.InBounds(c.frame, p) {
		return true
	}
	if c.opts.Symmetric && p.Y > c.opts.Height/2 {
		return true
	}
	return c.mask.IsPainted(p)
}

// paintLeaf reserves the leaf and its outline stroke.
func (c *Composer) paintLeaf(poly geom.Polygon) {
	c.mask.PaintPolygon(poly, true)
	for i := 1; i < len(poly); i++ {
		c.mask.PaintSegment(poly[i-1], poly[i], c.opts.PenWidth)
	}
}

// background hatches the frame outside a grown copy of the mask.
func (c *Composer) background(bg Background) []Route {
	grown := c.mask.Clone()
	grown.Grow(int(math.Ceil(bg.Margin / c.opts.Precision)))
	clip := c.clipper(func(p geom.Point) bool {
		return !geom.InBounds(c.frame, p) || grown.IsPainted(p)
	})

	var out []Route
	if bg.Spacing <= 0 {
		return nil
	}
	for i := range steps(math.Floor((c.frame.URy-c.frame.LLy)/bg.Spacing) + 1) {
		y := c.frame.LLy + float64(i)*bg.Spacing
		line := []geom.Point{geom.Pt(c.frame.LLx, y), geom.Pt(c.frame.URx, y)}
		for _, part := range clip.Clip(line) {
			out = append(out, Route{ColorIndex: bg.ColorIndex, Points: part})
		}
	}
	return out
}
