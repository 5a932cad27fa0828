// Package pkg holds the libraries behind the shattered plot generator.
//
// # Overview
//
// Shattered cuts a canvas into polygons, fills each shard with a pen
// pattern and groups the resulting strokes by ink, ready for a pen
// plotter. The pkg directory is organized into four areas:
//
//  1. [core] - Generation (seeded random source, paint mask, recursive
//     subdivision, stroke composition)
//  2. [render] - Output (palettes, SVG/PNG/PDF/JSON sinks, tree diagrams)
//  3. [pipeline] - Orchestration (generate → render with caching)
//  4. Infrastructure: [cache], [archive], [config], [server], [io]
//
// # Architecture
//
// The data flow through shattered:
//
//	Seed
//	  ↓
//	[core/rng] deterministic random stream
//	  ↓
//	[core/subdivide] recursive cuts → leaf shapes
//	  ↓
//	[core/compose] fills clipped against the [core/mask] → routes
//	  ↓
//	[render/sink] SVG/PNG/PDF/JSON
//
// # Quick Start
//
//	plot, err := art.Generate("0x0000123456789abcdef0011223344556677", art.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(plot, sink.WithPalette(p))
//
// For cached, multi-format runs use [pipeline.Runner].
package pkg
