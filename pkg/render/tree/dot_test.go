package tree

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/gre/shattered/pkg/core/geom"
	"github.com/gre/shattered/pkg/core/subdivide"
	"github.com/gre/shattered/pkg/render/palette"
)

func sample() (*subdivide.Node, []subdivide.LeafShape) {
	root := &subdivide.Node{Depth: 0, Area: 200, Angle: math.Pi / 2, Children: []*subdivide.Node{
		{Depth: 1, Area: 100},
		{Depth: 1, Area: 100},
	}}
	leaves := []subdivide.LeafShape{
		{Polygon: geom.Rect(0, 0, 10, 10), ColorIndex: 0, FillStyle: subdivide.Hatch},
		{Polygon: geom.Rect(10, 0, 20, 10), ColorIndex: 1, FillStyle: subdivide.Spiral},
	}
	return root, leaves
}

func TestToDOT_Basic(t *testing.T) {
	root, leaves := sample()
	dot := ToDOT(root, leaves, Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if !strings.Contains(dot, `n0 [label="cut 90°"]`) {
		t.Errorf("ToDOT() output missing root cut, got:\n%s", dot)
	}
	if !strings.Contains(dot, "n0 -> n1;") || !strings.Contains(dot, "n0 -> n2;") {
		t.Error("ToDOT() output missing edges")
	}
	if !strings.Contains(dot, `label="hatch #0"`) || !strings.Contains(dot, `label="spiral #1"`) {
		t.Error("ToDOT() leaves should be labelled in depth-first order")
	}
	if strings.Contains(dot, "fillcolor=\"#") {
		t.Error("ToDOT() without palette should not colour leaves")
	}
}

func TestToDOT_Palette(t *testing.T) {
	root, leaves := sample()
	p, err := palette.NewRegistry().Get("inks")
	if err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(root, leaves, Options{Palette: p, Detailed: true})

	if !strings.Contains(dot, `fillcolor="`+p.At(1).Main+`"`) {
		t.Error("ToDOT() leaf should be filled with its ink")
	}
	if !strings.Contains(dot, "100 mm²") {
		t.Error("ToDOT() detailed output missing areas")
	}
}

func TestToDOT_Empty(t *testing.T) {
	if dot := ToDOT(nil, nil, Options{}); !strings.HasSuffix(dot, "}\n") {
		t.Errorf("ToDOT(nil) = %q", dot)
	}
}

func TestNormalizeDegrees(t *testing.T) {
	tests := []struct{ rad, want float64 }{
		{0, 0}, {math.Pi / 4, 45}, {-math.Pi / 4, 135}, {math.Pi, 0},
	}
	for _, tt := range tests {
		if got := normalizeDegrees(tt.rad); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("normalizeDegrees(%v) = %v, want %v", tt.rad, got, tt.want)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	root, leaves := sample()
	svg, err := RenderSVG(context.Background(), ToDOT(root, leaves, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), `viewBox="0 0 `) {
		t.Error("RenderSVG() output should have a normalized viewBox")
	}
}
