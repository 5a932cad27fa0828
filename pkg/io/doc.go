// Package io provides JSON import and export for generated plots.
//
// # JSON Format
//
//	{
//	  "version": 1,
//	  "seed": "0x0000123456789abcdef0011223344556677",
//	  "width": 297, "height": 210, "pad": 10,
//	  "max_depth": 6, "attempts": 1,
//	  "paper_seed": 0.93, "dark": false,
//	  "palette": "inks",
//	  "leaves": [{"color": 0, "style": "hatch", "polygon": [[10, 10], [287, 10], ...]}],
//	  "routes": [{"color": 0, "points": [[10, 10], [287, 10], ...]}]
//	}
//
// Points are [x, y] pairs in millimetres. Leaves are optional on import;
// routes are what gets drawn.
//
// # Import
//
// [ReadJSON] and [ImportJSON] validate the document against an embedded
// JSON schema before decoding, so a hand-edited or foreign plot fails with
// a precise location instead of rendering garbage:
//
//	imp, err := io.ImportJSON("plot.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := sink.RenderSVG(imp.Plot)
//
// # Export
//
// [WriteJSON] and [ExportJSON] write the same format. A plot survives a
// write/read round trip except for its subdivision tree, which is not
// serialized.
package io
