package sink

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/gre/shattered/pkg/core/art"
	"github.com/gre/shattered/pkg/core/compose"
	"github.com/gre/shattered/pkg/core/geom"
	"github.com/gre/shattered/pkg/errors"
	"github.com/gre/shattered/pkg/render"
	"github.com/gre/shattered/pkg/render/palette"
)

func testPlot() *art.Plot {
	return &art.Plot{
		Seed:   "0xtest",
		Width:  100,
		Height: 50,
		Pad:    5,
		Routes: []compose.Route{
			{ColorIndex: 0, Points: []geom.Point{geom.Pt(10, 10), geom.Pt(20, 10), geom.Pt(20, 20)}},
			{ColorIndex: 2, Points: []geom.Point{geom.Pt(30, 30), geom.Pt(40, 35)}},
			{ColorIndex: 0, Points: []geom.Point{geom.Pt(50, 10), geom.Pt(60, 12.346)}},
		},
	}
}

func testPalette(t *testing.T) palette.Palette {
	t.Helper()
	p, err := palette.NewRegistry().Get("inks")
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLayers(t *testing.T) {
	layers := Layers(testPlot())
	if len(layers) != 3 {
		t.Fatalf("got %d layers, want 3", len(layers))
	}
	if len(layers[0]) != 2 || len(layers[1]) != 0 || len(layers[2]) != 1 {
		t.Errorf("layer sizes = %d/%d/%d, want 2/0/1", len(layers[0]), len(layers[1]), len(layers[2]))
	}
}

func TestLayersIgnoreOutOfRangeColors(t *testing.T) {
	p := testPlot()
	p.Routes = append(p.Routes,
		compose.Route{ColorIndex: 1 << 62, Points: []geom.Point{geom.Pt(1, 1), geom.Pt(2, 2)}},
		compose.Route{ColorIndex: -1, Points: []geom.Point{geom.Pt(1, 1), geom.Pt(2, 2)}},
	)
	layers := Layers(p)
	if len(layers) != MaxLayers {
		t.Fatalf("got %d layers, want %d", len(layers), MaxLayers)
	}
	n := 0
	for _, l := range layers {
		n += len(l)
	}
	if n != 3 {
		t.Errorf("drew %d routes, want the 3 in range", n)
	}
	if svg := RenderSVG(p); len(svg) == 0 {
		t.Error("RenderSVG returned nothing")
	}
}

func TestRenderSVG(t *testing.T) {
	pal := testPalette(t)
	svg := string(RenderSVG(testPlot(), WithPalette(pal)))

	for _, want := range []string{
		`width="100mm" height="50mm" viewBox="0 0 100 50"`,
		`inkscape:groupmode="layer"`,
		`stroke="` + pal.At(0).Main + `"`,
		`stroke="` + pal.At(2).Main + `"`,
		`<path d="M10.00,10.00L20.00,10.00L20.00,20.00"/>`,
		`L60.00,12.35`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %s", want)
		}
	}
	if got := strings.Count(svg, "<g "); got != 2 {
		t.Errorf("got %d layers, want 2 (empty layer skipped)", got)
	}
	if strings.Contains(svg, "<rect") || strings.Contains(svg, "mix-blend-mode") {
		t.Error("background and blend should be opt-in")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	pal := testPalette(t)
	p := testPlot()
	p.Dark = true
	svg := string(RenderSVG(p, WithPalette(pal), WithBackground(), WithBlend(), WithStrokeWidth(0.8)))

	for _, want := range []string{
		`<rect width="100" height="50" fill="` + pal.DarkPaper + `"/>`,
		`stroke="` + pal.At(0).Highlight + `"`,
		`stroke-width="0.8"`,
		`mix-blend-mode:multiply`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %s", want)
		}
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(testPlot(), WithScale(2), WithPNGSVGOptions(WithPalette(testPalette(t))))
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("image size = %dx%d, want 200x100", b.Dx(), b.Dy())
	}
	// (15, 10) mm lies on the first stroke.
	paper := img.At(2, 2)
	if img.At(30, 20) == paper {
		t.Error("stroke pixel has the paper colour")
	}
}

func TestRenderPNGTooLarge(t *testing.T) {
	p := testPlot()
	p.Width, p.Height = 2000, 2000
	_, err := RenderPNG(p, WithScale(20))
	if !errors.Is(err, errors.ErrCodeInvalidCanvas) {
		t.Errorf("RenderPNG() error = %v, want INVALID_CANVAS", err)
	}
}

func TestRenderPDF(t *testing.T) {
	if !render.Available() {
		t.Skip("rsvg-convert not installed")
	}
	data, err := RenderPDF(context.Background(), testPlot())
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(testPlot(), WithJSONPalette("inks"))
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, `"palette": "inks"`) || !strings.Contains(out, `"seed": "0xtest"`) {
		t.Errorf("unexpected JSON:\n%s", out)
	}
}
