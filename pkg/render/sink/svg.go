package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/gre/shattered/pkg/core/art"
	"github.com/gre/shattered/pkg/core/compose"
	"github.com/gre/shattered/pkg/render/palette"
)

// DefaultStrokeWidth is the pen width in mm.
const DefaultStrokeWidth = 0.35

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	palette     palette.Palette
	strokeWidth float64
	background  bool
	blend       bool
}

func WithPalette(p palette.Palette) SVGOption { return func(r *svgRenderer) { r.palette = p } }
func WithStrokeWidth(w float64) SVGOption {
	return func(r *svgRenderer) {
		if w > 0 {
			r.strokeWidth = w
		}
	}
}

// WithBackground paints the paper colour behind the layers. Plotter files
// usually leave it out.
func WithBackground() SVGOption { return func(r *svgRenderer) { r.background = true } }

// WithBlend composites the layers with multiply, like inks on paper.
func WithBlend() SVGOption { return func(r *svgRenderer) { r.blend = true } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{strokeWidth: DefaultStrokeWidth}
	for _, opt := range opts {
		opt(&r)
	}
	if len(r.palette.Colors) == 0 {
		r.palette, _ = palette.NewRegistry().Get(palette.DefaultName)
	}
	return r
}

// RenderSVG writes the plot as an SVG in millimetres with one Inkscape layer
// per colour, so each layer can be plotted with its own pen.
func RenderSVG(p *art.Plot, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape" width="%gmm" height="%gmm" viewBox="0 0 %g %g">`+"\n",
		p.Width, p.Height, p.Width, p.Height)
	fmt.Fprintf(&buf, "  <desc>seed %s, paper %.6f</desc>\n", html.EscapeString(p.Seed), p.PaperSeed)

	if r.background {
		fmt.Fprintf(&buf, `  <rect width="%g" height="%g" fill="%s"/>`+"\n", p.Width, p.Height, r.palette.Background(p.Dark))
	}
	for i, routes := range Layers(p) {
		if len(routes) == 0 {
			continue
		}
		renderLayer(&buf, &r, i, p.Dark, routes)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// MaxLayers bounds the colour indices a plot may use; routes outside
// [0, MaxLayers) are not drawn.
const MaxLayers = 256

// Layers groups the routes by colour index, keeping route order.
func Layers(p *art.Plot) [][]compose.Route {
	layers := make([][]compose.Route, min(p.ColorCount(), MaxLayers))
	for _, rt := range p.Routes {
		if rt.ColorIndex < 0 || rt.ColorIndex >= len(layers) {
			continue
		}
		layers[rt.ColorIndex] = append(layers[rt.ColorIndex], rt)
	}
	return layers
}

func renderLayer(buf *bytes.Buffer, r *svgRenderer, index int, dark bool, routes []compose.Route) {
	ink := r.palette.At(index)
	style := ""
	if r.blend {
		style = ` style="mix-blend-mode:multiply"`
	}
	fmt.Fprintf(buf, `  <g inkscape:groupmode="layer" inkscape:label="%d %s" fill="none" stroke="%s" stroke-width="%g" stroke-linecap="round" stroke-linejoin="round"%s>`+"\n",
		index, html.EscapeString(ink.Name), r.palette.Stroke(index, dark), r.strokeWidth, style)
	for _, rt := range routes {
		if len(rt.Points) < 2 {
			continue
		}
		buf.WriteString(`    <path d="`)
		writePath(buf, rt)
		buf.WriteString("\"/>\n")
	}
	buf.WriteString("  </g>\n")
}

func writePath(buf *bytes.Buffer, rt compose.Route) {
	for i, pt := range rt.Points {
		cmd := 'L'
		if i == 0 {
			cmd = 'M'
		}
		fmt.Fprintf(buf, "%c%.2f,%.2f", cmd, pt.X, pt.Y)
	}
}
