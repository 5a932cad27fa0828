// Package art generates a complete plot from a seed.
//
// Generate seeds the RNG, draws the plot metadata, shatters the padded
// canvas with the subdivision engine (retrying degenerate compositions) and
// composes the resulting leaves into routes:
//
//	plot, err := art.Generate("0x9f2c...", art.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	for _, r := range plot.Routes {
//	    // r.ColorIndex, r.Points
//	}
//
// The result is a pure function of the seed and the options.
package art

import (
	"math"

	"github.com/gre/shattered/pkg/core/compose"
	"github.com/gre/shattered/pkg/core/geom"
	"github.com/gre/shattered/pkg/core/rng"
	"github.com/gre/shattered/pkg/core/subdivide"
	"github.com/gre/shattered/pkg/errors"
)

const (
	// DefaultMaxAttempts caps the composition-quality retry loop.
	DefaultMaxAttempts = 99

	// DefaultMinCoverage is the smallest share of the frame the leaves must
	// cover for a composition to be kept.
	DefaultMinCoverage = 0.85

	// MaxDepthLimit bounds explicit depths; each level doubles the work.
	MaxDepthLimit = 14

	// MaxCanvas is the longest accepted canvas side in mm.
	MaxCanvas = 2000.0

	// MinPenWidth and MaxDensity bound stroke spacing, which is
	// proportional to PenWidth/Density.
	MinPenWidth = 0.05
	MaxDensity  = 10.0

	// MinPrecision is the finest paint mask cell in mm.
	MinPrecision = 0.25
)

// Options configures Generate.
type Options struct {
	// MaxDepth is the subdivision depth. Negative values let the seed pick
	// a depth between 4 and 7; zero keeps the whole frame as a single leaf.
	MaxDepth int

	MaxAttempts int
	MinCoverage float64

	Subdivide subdivide.Params
	Compose   compose.Options
}

// DefaultOptions returns options for a seed-chosen depth on A4 landscape.
func DefaultOptions() Options {
	return Options{
		MaxDepth:    -1,
		MaxAttempts: DefaultMaxAttempts,
		MinCoverage: DefaultMinCoverage,
		Subdivide:   subdivide.DefaultParams(),
		Compose:     compose.DefaultOptions(),
	}
}

// Validate checks the canvas, stroke and depth settings. Zero PenWidth,
// Density and Precision stand for their compose defaults.
func (o Options) Validate() error {
	c := o.Compose
	if !finite(c.Width, c.Height, c.Pad, c.PenWidth, c.Density, c.Precision) {
		return errors.New(errors.ErrCodeInvalidInput, "canvas and stroke settings must be finite numbers")
	}
	if c.Width <= 0 || c.Height <= 0 || c.Width > MaxCanvas || c.Height > MaxCanvas {
		return errors.New(errors.ErrCodeInvalidCanvas, "canvas sides must be in (0, %g] mm, got %gx%g", MaxCanvas, c.Width, c.Height)
	}
	if c.Pad < 0 || 2*c.Pad >= math.Min(c.Width, c.Height) {
		return errors.New(errors.ErrCodeInvalidCanvas, "padding %g does not fit a %gx%g canvas", c.Pad, c.Width, c.Height)
	}
	if c.PenWidth != 0 && (c.PenWidth < MinPenWidth || c.PenWidth > c.Width) {
		return errors.New(errors.ErrCodeInvalidInput, "pen width %g must be in [%g, %g] mm", c.PenWidth, MinPenWidth, c.Width)
	}
	if c.Density < 0 || c.Density > MaxDensity {
		return errors.New(errors.ErrCodeInvalidInput, "density %g must be in (0, %g]", c.Density, MaxDensity)
	}
	if c.Precision != 0 && c.Precision < MinPrecision {
		return errors.New(errors.ErrCodeInvalidInput, "mask precision %g is finer than %g mm", c.Precision, MinPrecision)
	}
	if bg := c.Background; bg != nil && !(bg.Spacing > 0 && finite(bg.Spacing, bg.Margin)) {
		return errors.New(errors.ErrCodeInvalidInput, "background spacing %g must be positive", bg.Spacing)
	}
	if s := c.Sun; s != nil && !finite(s.Center.X, s.Center.Y, s.Radius) {
		return errors.New(errors.ErrCodeInvalidInput, "sun must have a finite centre and radius")
	}
	if o.MaxDepth > MaxDepthLimit {
		return errors.New(errors.ErrCodeInvalidInput, "max depth %d exceeds %d", o.MaxDepth, MaxDepthLimit)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Plot is a generated composition.
type Plot struct {
	Seed      string  `json:"seed"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Pad       float64 `json:"pad"`
	MaxDepth  int     `json:"max_depth"`
	Attempts  int     `json:"attempts"`
	PaperSeed float64 `json:"paper_seed"`
	Dark      bool    `json:"dark"`

	Leaves []subdivide.LeafShape `json:"leaves"`
	Routes []compose.Route       `json:"routes"`

	// Tree is the subdivision tree of the kept attempt.
	Tree *subdivide.Node `json:"-"`
}

// ColorCount returns one more than the highest colour index in use.
func (p *Plot) ColorCount() int {
	n := 0
	for _, r := range p.Routes {
		n = max(n, r.ColorIndex+1)
	}
	return n
}

// Generate produces the plot for seed.
func Generate(seed string, opts Options) (*Plot, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r, err := rng.New(seed)
	if err != nil {
		return nil, err
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	c := opts.Compose
	plot := &Plot{
		Seed:      seed,
		Width:     c.Width,
		Height:    c.Height,
		Pad:       c.Pad,
		PaperSeed: r.Float(),
		Dark:      r.Bool(0.2),
	}

	maxDepth := opts.MaxDepth
	if maxDepth < 0 {
		maxDepth = 4 + r.Intn(4)
	}
	plot.MaxDepth = maxDepth

	canvas := geom.Bounds{URx: c.Width, URy: c.Height}
	frame := c.Frame()
	start := geom.FromBounds(frame)
	engine := subdivide.New(r, canvas, opts.Subdivide)

	for attempt := 1; ; attempt++ {
		style := subdivide.FillStyles[r.Intn(len(subdivide.FillStyles))]
		angle := r.Random(math.Pi)
		maxPow := r.Range(1, 4)
		leaves, tree := engine.Subdivide(start, 0, maxDepth, 0, style, angle, maxPow)

		plot.Leaves, plot.Tree, plot.Attempts = leaves, tree, attempt
		if attempt >= opts.MaxAttempts || acceptable(leaves, frame, opts.MinCoverage) {
			break
		}
	}

	plot.Routes = compose.New(r, c).Compose(plot.Leaves)
	return plot, nil
}

// acceptable rejects two-leaf compositions and those leaving too much of
// the frame empty.
func acceptable(leaves []subdivide.LeafShape, frame geom.Bounds, minCoverage float64) bool {
	if len(leaves) == 2 {
		return false
	}
	return Coverage(leaves, frame) >= minCoverage
}

// Coverage returns the share of frame covered by the leaves.
func Coverage(leaves []subdivide.LeafShape, frame geom.Bounds) float64 {
	total := (frame.URx - frame.LLx) * (frame.URy - frame.LLy)
	if total <= 0 {
		return 0
	}
	var covered float64
	for _, l := range leaves {
		covered += l.Polygon.ClipBounds(frame).Area()
	}
	return math.Min(1, covered/total)
}
