// Package tree renders the subdivision tree of a plot as a Graphviz diagram.
//
// Internal nodes show the cut angle; leaves show their fill style and area
// and are filled with their ink, which makes it easy to see where a style
// or colour change entered the recursion.
//
//	dot := tree.ToDOT(plot.Tree, plot.Leaves, tree.Options{Palette: p})
//	svg, err := tree.RenderSVG(ctx, dot)
package tree

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/gre/shattered/pkg/core/subdivide"
	"github.com/gre/shattered/pkg/render"
	"github.com/gre/shattered/pkg/render/palette"
)

// Options configures tree diagram rendering.
type Options struct {
	// Palette colours the leaves. The zero value leaves them white.
	Palette palette.Palette

	// Detailed adds the node area and pivot to labels.
	Detailed bool
}

// ToDOT converts a subdivision tree to Graphviz DOT. leaves must be the leaf
// list returned with the tree; leaf nodes are matched to it in depth-first
// order.
func ToDOT(root *subdivide.Node, leaves []subdivide.LeafShape, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	if root != nil {
		w := &walker{buf: &buf, leaves: leaves, opts: opts}
		w.visit(root)
	}

	buf.WriteString("}\n")
	return buf.String()
}

type walker struct {
	buf    *bytes.Buffer
	leaves []subdivide.LeafShape
	opts   Options
	nextID int
	leaf   int
}

func (w *walker) visit(n *subdivide.Node) string {
	id := "n" + strconv.Itoa(w.nextID)
	w.nextID++

	if n.IsLeaf() {
		w.writeLeaf(id, n)
		return id
	}

	label := fmt.Sprintf("cut %.0f°", normalizeDegrees(n.Angle))
	if w.opts.Detailed {
		label += fmt.Sprintf("\\n%.0f mm²\\npivot %.1f, %.1f", n.Area, n.Pivot.X, n.Pivot.Y)
	}
	fmt.Fprintf(w.buf, "  %s [label=\"%s\"];\n", id, label)
	for _, ch := range n.Children {
		child := w.visit(ch)
		fmt.Fprintf(w.buf, "  %s -> %s;\n", id, child)
	}
	return id
}

func (w *walker) writeLeaf(id string, n *subdivide.Node) {
	attrs := "shape=ellipse"
	label := "leaf"
	if w.leaf < len(w.leaves) {
		l := w.leaves[w.leaf]
		label = fmt.Sprintf("%s #%d", l.FillStyle, l.ColorIndex)
		if len(w.opts.Palette.Colors) > 0 {
			attrs += fmt.Sprintf(", fillcolor=%q", w.opts.Palette.At(l.ColorIndex).Main)
		}
	}
	w.leaf++
	if w.opts.Detailed {
		label += fmt.Sprintf("\\n%.0f mm²", n.Area)
	}
	fmt.Fprintf(w.buf, "  %s [label=\"%s\", %s];\n", id, label, attrs)
}

func normalizeDegrees(rad float64) float64 {
	d := math.Mod(rad*180/math.Pi, 180)
	if d < 0 {
		d += 180
	}
	return d
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element with one whose
// viewBox starts at the origin, so the diagram scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
