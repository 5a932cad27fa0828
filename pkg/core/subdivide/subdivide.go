// Package subdivide implements the recursive polygon shattering engine.
//
// Starting from a polygon, the engine cuts it with a line through a jittered
// centroid, pushes the two halves apart and recurses into each half with a
// perturbed cut angle. Recursion stops at a maximum depth, at a minimum area,
// when a cut misses the polygon, or when a location- and depth-dependent
// random cutoff fires. Every terminal polygon becomes a [LeafShape] tagged
// with a palette colour index and a [FillStyle].
//
// The engine draws every decision from a single [rng.RNG] in a fixed order,
// so the same seed and [Params] always yield the same leaves.
//
//	e := subdivide.New(r, canvas, subdivide.DefaultParams())
//	leaves, tree := e.Subdivide(start, 0, 6, 0, subdivide.Plain, 0.3, 2)
package subdivide

import (
	"math"

	"github.com/gre/shattered/pkg/core/geom"
	"github.com/gre/shattered/pkg/core/rng"
)

// LeafShape is a terminal polygon of the subdivision.
type LeafShape struct {
	Polygon    geom.Polygon `json:"polygon"`
	ColorIndex int          `json:"color"`
	FillStyle  FillStyle    `json:"style"`
}

// Node is one step of the subdivision tree. Leaves of the tree correspond,
// in depth-first order, to the returned leaf list.
type Node struct {
	Depth    int
	Area     float64
	Angle    float64
	Pivot    geom.Point
	Children []*Node
}

// IsLeaf reports whether the node was not cut further.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// LeafCount returns the number of terminal nodes under n.
func (n *Node) LeafCount() int {
	if n.IsLeaf() {
		return 1
	}
	c := 0
	for _, ch := range n.Children {
		c += ch.LeafCount()
	}
	return c
}

// MaxDepth returns the deepest node depth under n.
func (n *Node) MaxDepth() int {
	d := n.Depth
	for _, ch := range n.Children {
		d = max(d, ch.MaxDepth())
	}
	return d
}

// Params holds the artistic tunables of the engine. The values returned by
// [DefaultParams] were tuned by eye.
type Params struct {
	// Jitter moves the cut pivot away from the centroid by up to this
	// fraction of the bounding box, scaled by the remaining depth ratio.
	Jitter float64

	// Cutoff probability = CutoffBase + CutoffEdge·(1-edge) - CutoffDepth·revratio,
	// where edge is the normalized distance of the centroid to the canvas
	// border.
	CutoffBase  float64
	CutoffEdge  float64
	CutoffDepth float64

	// MinArea stops recursion below this polygon area (mm²).
	MinArea float64

	// Plain leaves larger than ForceArea·(1+r) are switched to ForcedStyle.
	ForceArea   float64
	ForcedStyle FillStyle

	// Spacing is the largest outward push (mm) between two halves.
	// Stability in [0, 1] makes the push more uniform as it grows.
	Spacing   float64
	Stability float64

	AngleJitter    float64 // radians
	RightAngleProb float64

	ColorBumpProb  float64
	ColorBumpDepth int

	StyleChangeProb float64

	// Subtrees with at least ThinCount leaves whose mean area is under
	// ThinArea (mm²) are filled Full.
	ThinArea  float64
	ThinCount int
}

// DefaultParams returns the engine defaults.
func DefaultParams() Params {
	return Params{
		Jitter:          0.3,
		CutoffBase:      0.1,
		CutoffEdge:      0.3,
		CutoffDepth:     0.4,
		MinArea:         9,
		ForceArea:       2000,
		ForcedStyle:     Hatch,
		Spacing:         4,
		Stability:       0.5,
		AngleJitter:     1.2,
		RightAngleProb:  0.2,
		ColorBumpProb:   0.1,
		ColorBumpDepth:  2,
		StyleChangeProb: 0.15,
		ThinArea:        36,
		ThinCount:       3,
	}
}

// Engine shatters polygons. It is not safe for concurrent use; it consumes
// its RNG.
type Engine struct {
	rng    *rng.RNG
	canvas geom.Bounds
	p      Params
}

// New returns an engine drawing from r. canvas is used to measure the
// distance of fragments to the border.
func New(r *rng.RNG, canvas geom.Bounds, p Params) *Engine {
	return &Engine{rng: r, canvas: canvas, p: p}
}

// Subdivide shatters poly and returns its leaves in depth-first order along
// with the subdivision tree. maxPow shapes the distribution of the outward
// push: larger values make most pushes small.
func (e *Engine) Subdivide(poly geom.Polygon, depth, maxDepth, colorIndex int, style FillStyle, angle, maxPow float64) ([]LeafShape, *Node) {
	area := poly.Area()
	center := poly.Centroid()
	b := poly.Bounds()
	rev := revRatio(depth, maxDepth)

	jitter := e.p.Jitter * rev
	pivot := geom.Pt(
		center.X+(e.rng.Random(2)-1)*jitter*(b.URx-b.LLx),
		center.Y+(e.rng.Random(2)-1)*jitter*(b.URy-b.LLy),
	)
	node := &Node{Depth: depth, Area: area, Angle: angle, Pivot: pivot}

	pieces := poly.Split(pivot, angle)
	if len(pieces) < 2 || depth >= maxDepth || area < e.p.MinArea || e.cutoff(center, rev) {
		return []LeafShape{e.leaf(poly, area, colorIndex, style)}, node
	}

	normal := geom.Unit(angle + math.Pi/2)
	var leaves []LeafShape
	for _, piece := range pieces {
		side := 1.0
		if geom.Cross(geom.Unit(angle), piece.Centroid().Sub(pivot)) < 0 {
			side = -1
		}
		push := e.p.Spacing * rev *
			(e.p.Stability + (1-e.p.Stability)*e.rng.Random(1)) *
			math.Pow(e.rng.Random(1), maxPow)
		moved := piece.Translate(normal.Mul(side * push))

		next := angle + e.rng.Range(-e.p.AngleJitter, e.p.AngleJitter)
		if e.rng.Bool(e.p.RightAngleProb) {
			next = angle + math.Pi/2
			if e.rng.Bool(0.5) {
				next = angle - math.Pi/2
			}
		}

		c := colorIndex
		if depth < e.p.ColorBumpDepth && e.rng.Bool(e.p.ColorBumpProb) {
			c++
		}
		s := style
		if e.rng.Bool(e.p.StyleChangeProb) {
			s = FillStyles[e.rng.Intn(len(FillStyles))]
		}

		sub, child := e.Subdivide(moved, depth+1, maxDepth, c, s, next, maxPow)
		leaves = append(leaves, sub...)
		node.Children = append(node.Children, child)
	}

	if len(leaves) >= e.p.ThinCount && meanArea(leaves) < e.p.ThinArea {
		for i := range leaves {
			leaves[i].FillStyle = Full
		}
	}
	return leaves, node
}

func (e *Engine) leaf(poly geom.Polygon, area float64, colorIndex int, style FillStyle) LeafShape {
	if style == Plain && area > e.p.ForceArea*(1+e.rng.Random(1)) {
		style = e.p.ForcedStyle
	}
	return LeafShape{Polygon: poly, ColorIndex: colorIndex, FillStyle: style}
}

// cutoff draws the random early stop for a fragment centred at c.
func (e *Engine) cutoff(c geom.Point, rev float64) bool {
	w := e.canvas.URx - e.canvas.LLx
	h := e.canvas.URy - e.canvas.LLy
	half := min(w, h) / 2
	edge := 1.0
	if half > 0 {
		d := min(c.X-e.canvas.LLx, e.canvas.URx-c.X, c.Y-e.canvas.LLy, e.canvas.URy-c.Y)
		edge = clamp(d/half, 0, 1)
	}
	p := clamp(e.p.CutoffBase+e.p.CutoffEdge*(1-edge)-e.p.CutoffDepth*rev, 0, 1)
	return e.rng.Random(1) < p
}

func revRatio(depth, maxDepth int) float64 {
	if maxDepth <= 0 {
		return 0
	}
	return clamp(1-float64(depth)/float64(maxDepth), 0, 1)
}

func meanArea(leaves []LeafShape) float64 {
	var sum float64
	for _, l := range leaves {
		sum += l.Polygon.Area()
	}
	return sum / float64(len(leaves))
}

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }
