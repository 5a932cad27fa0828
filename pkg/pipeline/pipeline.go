// Package pipeline runs the generate → render pipeline shared by the CLI and
// the HTTP server.
//
// The pipeline has two stages:
//
//  1. Generate: shatter the canvas for a seed into an [art.Plot]
//  2. Render: serialize the plot as SVG, PNG, PDF or JSON
//
// A [Runner] executes both stages with caching:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Seed:    "0x9f2c...",
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// The stages are also usable on their own with [Generate] and [Render].
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gre/shattered/pkg/cache"
	"github.com/gre/shattered/pkg/core/art"
	"github.com/gre/shattered/pkg/core/compose"
	"github.com/gre/shattered/pkg/core/geom"
	"github.com/gre/shattered/pkg/errors"
	"github.com/gre/shattered/pkg/render/palette"
	"github.com/gre/shattered/pkg/render/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth and DefaultHeight are A4 landscape in mm.
	DefaultWidth  = 297.0
	DefaultHeight = 210.0

	// DefaultPad is the frame padding in mm.
	DefaultPad = 10.0

	// DefaultPenWidth is a 0.35 mm fineliner.
	DefaultPenWidth = sink.DefaultStrokeWidth

	// DefaultDensity leaves fill spacing unscaled.
	DefaultDensity = 1.0

	// DefaultScale is the PNG resolution in pixels per mm.
	DefaultScale = 4.0

	// MaxScale bounds the PNG pixels per millimetre.
	MaxScale = 20.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Generate options
	Seed       string  `json:"seed"`
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	Pad        float64 `json:"pad,omitempty"`
	MaxDepth   int     `json:"max_depth,omitempty"` // 0 lets the seed choose
	PenWidth   float64 `json:"pen_width,omitempty"`
	Density    float64 `json:"density,omitempty"`
	Symmetric  bool    `json:"symmetric,omitempty"`
	Sun        bool    `json:"sun,omitempty"`
	Background bool    `json:"background,omitempty"`
	Refresh    bool    `json:"refresh,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Palette string   `json:"palette,omitempty"`
	Paper   bool     `json:"paper,omitempty"` // paint the paper colour in SVG/PDF
	Blend   bool     `json:"blend,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger       `json:"-"`
	Palettes *palette.Registry `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Plot *art.Plot

	// PlotHash is the hash of the plot's JSON export; artifact keys derive
	// from it.
	PlotHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Attempts     int
	LeafCount    int
	RouteCount   int
	GenerateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GenerateHit bool
	RenderHit   bool // all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// FormatNames returns the supported formats, sorted.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the seed and applies defaults for the full
// pipeline. Calling it again is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetGenerateDefaults fills zero generate options.
func (o *Options) SetGenerateDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Pad == 0 {
		o.Pad = DefaultPad
	}
	if o.PenWidth == 0 {
		o.PenWidth = DefaultPenWidth
	}
	if o.Density == 0 {
		o.Density = DefaultDensity
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForGenerate applies generate defaults and checks the seed and the
// canvas.
func (o *Options) ValidateForGenerate() error {
	o.SetGenerateDefaults()
	if o.Seed == "" {
		return errors.New(errors.ErrCodeInvalidSeed, "seed is required")
	}
	if o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_depth must not be negative")
	}
	if o.PenWidth < 0 || o.Density < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "pen_width and density must be positive")
	}
	return o.ArtOptions().Validate()
}

// SetRenderDefaults fills zero render options.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Palette == "" {
		o.Palette = palette.DefaultName
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.PenWidth == 0 {
		o.PenWidth = DefaultPenWidth
	}
	if o.Palettes == nil {
		o.Palettes = palette.NewRegistry()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender applies render defaults and checks formats and palette.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if !(o.Scale > 0 && o.Scale <= MaxScale) {
		return errors.New(errors.ErrCodeInvalidInput, "scale %g must be in (0, %g]", o.Scale, MaxScale)
	}
	_, err := o.Palettes.Get(o.Palette)
	return err
}

// ArtOptions converts the generate options to [art.Options].
func (o *Options) ArtOptions() art.Options {
	opts := art.DefaultOptions()
	if o.MaxDepth > 0 {
		opts.MaxDepth = o.MaxDepth
	}

	c := &opts.Compose
	c.Width, c.Height, c.Pad = o.Width, o.Height, o.Pad
	c.PenWidth = o.PenWidth
	c.Density = o.Density
	c.Symmetric = o.Symmetric
	if o.Sun {
		c.Sun = sunFor(o.Width, o.Height)
	}
	if o.Background {
		c.Background = &compose.Background{ColorIndex: 2, Spacing: 4 * o.PenWidth / o.Density, Margin: 1}
	}
	return opts
}

// sunFor places the sun in the upper right third of the sheet.
func sunFor(width, height float64) *compose.Sun {
	r := min(width, height) * 0.12
	return &compose.Sun{
		Center:     geom.Pt(width*0.7, height*0.3),
		Radius:     r,
		ColorIndex: 1,
	}
}

// PlotKeyOpts returns cache key options for plot generation.
func (o *Options) PlotKeyOpts() cache.PlotKeyOpts {
	return cache.PlotKeyOpts{
		Width:      o.Width,
		Height:     o.Height,
		Pad:        o.Pad,
		MaxDepth:   o.MaxDepth,
		PenWidth:   o.PenWidth,
		Density:    o.Density,
		Symmetric:  o.Symmetric,
		Sun:        o.Sun,
		Background: o.Background,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:      format,
		Palette:     o.Palette,
		StrokeWidth: o.PenWidth,
	}
	switch format {
	case FormatSVG, FormatPDF:
		k.Paper, k.Blend = o.Paper, o.Blend
	case FormatPNG:
		k.Scale = o.Scale
	}
	return k
}
