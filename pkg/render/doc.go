// Package render turns generated plots into files.
//
// # Overview
//
//   - [sink]: plot outputs (SVG layers, PNG preview, PDF, JSON)
//   - [palette]: ink palettes mapping colour indices to strokes
//   - [tree]: Graphviz diagrams of the subdivision tree
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG with the external rsvg-convert tool
// (from librsvg). The plot PDF sink and the tree diagram use them; the plot
// PNG preview is rasterized natively and needs no external tool.
//
//	svg := sink.RenderSVG(plot, sink.WithPalette(p))
//	pdf, err := render.ToPDF(ctx, svg)
//
// [sink]: github.com/gre/shattered/pkg/render/sink
// [palette]: github.com/gre/shattered/pkg/render/palette
// [tree]: github.com/gre/shattered/pkg/render/tree
package render
