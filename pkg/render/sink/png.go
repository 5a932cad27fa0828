package sink

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"

	"github.com/gre/shattered/pkg/core/art"
	"github.com/gre/shattered/pkg/errors"
)

// MaxPNGPixels caps the preview size, about 256 MiB of RGBA.
const MaxPNGPixels = 1 << 26

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPNGSVGOptions applies SVG options (palette, stroke width, background)
// to the preview.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the resolution in pixels per millimetre (default 4).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// RenderPNG rasterizes a preview of the plot. The paper colour is always
// painted; layers are stroked in colour order.
func RenderPNG(p *art.Plot, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 4}
	for _, opt := range opts {
		opt(&r)
	}
	svg := newSVGRenderer(r.svgOpts...)

	w, h := int(p.Width*r.scale+0.5), int(p.Height*r.scale+0.5)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("png: empty canvas %dx%d", w, h)
	}
	if w*h > MaxPNGPixels {
		return nil, errors.New(errors.ErrCodeInvalidCanvas, "png preview of %dx%d pixels is too large, lower the scale", w, h)
	}
	dc := gg.NewContext(w, h)
	dc.SetHexColor(svg.palette.Background(p.Dark))
	dc.Clear()

	dc.SetLineWidth(svg.strokeWidth * r.scale)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	for i, routes := range Layers(p) {
		if len(routes) == 0 {
			continue
		}
		dc.SetHexColor(svg.palette.Stroke(i, p.Dark))
		for _, rt := range routes {
			if len(rt.Points) < 2 {
				continue
			}
			dc.MoveTo(rt.Points[0].X*r.scale, rt.Points[0].Y*r.scale)
			for _, pt := range rt.Points[1:] {
				dc.LineTo(pt.X*r.scale, pt.Y*r.scale)
			}
			dc.Stroke()
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
