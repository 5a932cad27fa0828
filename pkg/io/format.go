package io

import (
	"github.com/gre/shattered/pkg/core/art"
	"github.com/gre/shattered/pkg/core/compose"
	"github.com/gre/shattered/pkg/core/geom"
	"github.com/gre/shattered/pkg/core/subdivide"
)

// FormatVersion is the version written to and accepted from plot files.
const FormatVersion = 1

type plotFile struct {
	Version   int        `json:"version"`
	Seed      string     `json:"seed"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Pad       float64    `json:"pad"`
	MaxDepth  int        `json:"max_depth"`
	Attempts  int        `json:"attempts"`
	PaperSeed float64    `json:"paper_seed"`
	Dark      bool       `json:"dark"`
	Palette   string     `json:"palette,omitempty"`
	Leaves    []leafFile `json:"leaves"`
	Routes    []route    `json:"routes"`
}

type leafFile struct {
	Color   int                 `json:"color"`
	Style   subdivide.FillStyle `json:"style"`
	Polygon [][2]float64        `json:"polygon"`
}

type route struct {
	Color  int          `json:"color"`
	Points [][2]float64 `json:"points"`
}

func toPairs(pts []geom.Point) [][2]float64 {
	out := make([][2]float64, len(pts))
	for i, p := range pts {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}

func fromPairs(pairs [][2]float64) []geom.Point {
	out := make([]geom.Point, len(pairs))
	for i, p := range pairs {
		out[i] = geom.Pt(p[0], p[1])
	}
	return out
}

func encodePlot(p *art.Plot, paletteName string) plotFile {
	out := plotFile{
		Version:   FormatVersion,
		Seed:      p.Seed,
		Width:     p.Width,
		Height:    p.Height,
		Pad:       p.Pad,
		MaxDepth:  p.MaxDepth,
		Attempts:  p.Attempts,
		PaperSeed: p.PaperSeed,
		Dark:      p.Dark,
		Palette:   paletteName,
		Leaves:    make([]leafFile, len(p.Leaves)),
		Routes:    make([]route, len(p.Routes)),
	}
	for i, l := range p.Leaves {
		out.Leaves[i] = leafFile{Color: l.ColorIndex, Style: l.FillStyle, Polygon: toPairs(l.Polygon)}
	}
	for i, r := range p.Routes {
		out.Routes[i] = route{Color: r.ColorIndex, Points: toPairs(r.Points)}
	}
	return out
}

func decodePlot(f plotFile) *art.Plot {
	p := &art.Plot{
		Seed:      f.Seed,
		Width:     f.Width,
		Height:    f.Height,
		Pad:       f.Pad,
		MaxDepth:  f.MaxDepth,
		Attempts:  f.Attempts,
		PaperSeed: f.PaperSeed,
		Dark:      f.Dark,
		Leaves:    make([]subdivide.LeafShape, len(f.Leaves)),
		Routes:    make([]compose.Route, len(f.Routes)),
	}
	for i, l := range f.Leaves {
		p.Leaves[i] = subdivide.LeafShape{Polygon: fromPairs(l.Polygon), ColorIndex: l.Color, FillStyle: l.Style}
	}
	for i, r := range f.Routes {
		p.Routes[i] = compose.Route{ColorIndex: r.Color, Points: fromPairs(r.Points)}
	}
	return p
}
