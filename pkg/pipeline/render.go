package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/gre/shattered/pkg/core/art"
	"github.com/gre/shattered/pkg/errors"
	"github.com/gre/shattered/pkg/observability"
	"github.com/gre/shattered/pkg/render/sink"
	"github.com/gre/shattered/pkg/render/tree"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, p *art.Plot, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := renderFormats(ctx, p, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(ctx context.Context, p *art.Plot, opts Options) (map[string][]byte, error) {
	svgOpts, err := buildSVGOptions(opts)
	if err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(p, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(p, sink.WithScale(opts.Scale), sink.WithPNGSVGOptions(svgOpts...))
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, p, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(p, sink.WithJSONPalette(opts.Palette))
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options shared by every format.
func buildSVGOptions(opts Options) ([]sink.SVGOption, error) {
	pal, err := opts.Palettes.Get(opts.Palette)
	if err != nil {
		return nil, err
	}
	svgOpts := []sink.SVGOption{
		sink.WithPalette(pal),
		sink.WithStrokeWidth(opts.PenWidth),
	}
	if opts.Paper {
		svgOpts = append(svgOpts, sink.WithBackground())
	}
	if opts.Blend {
		svgOpts = append(svgOpts, sink.WithBlend())
	}
	return svgOpts, nil
}

// RenderTree renders the subdivision tree of p as "dot", "svg", "png" or
// "pdf". The plot must carry its tree, which imported plots do not.
func RenderTree(ctx context.Context, p *art.Plot, format string, opts Options) ([]byte, error) {
	if p.Tree == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "plot %s has no subdivision tree", p.Seed)
	}
	opts.SetRenderDefaults()
	pal, err := opts.Palettes.Get(opts.Palette)
	if err != nil {
		return nil, err
	}
	dot := tree.ToDOT(p.Tree, p.Leaves, tree.Options{Palette: pal, Detailed: true})

	switch format {
	case "dot":
		return []byte(dot), nil
	case FormatSVG:
		return tree.RenderSVG(ctx, dot)
	case FormatPNG:
		return tree.RenderPNG(ctx, dot, 2)
	case FormatPDF:
		return tree.RenderPDF(ctx, dot)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid tree format: %q (must be one of: dot, svg, png, pdf)", format)
	}
}
