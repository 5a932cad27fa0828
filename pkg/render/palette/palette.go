// Package palette holds the ink palettes plots are drawn with.
//
// A plot only stores colour indices; a [Palette] maps each index to an ink,
// wrapping around when a plot uses more colours than the palette has. Every
// ink has a main colour for light paper and a highlight colour used on dark
// paper.
package palette

import (
	"fmt"
	"regexp"
	"slices"
	"sort"

	"github.com/gre/shattered/pkg/errors"
)

// DefaultName is the palette used when none is configured.
const DefaultName = "inks"

// Color is a named ink.
type Color struct {
	Name      string `json:"name" toml:"name" yaml:"name"`
	Main      string `json:"main" toml:"main" yaml:"main"`
	Highlight string `json:"highlight" toml:"highlight" yaml:"highlight"`
}

// Palette is an ordered list of inks plus paper colours.
type Palette struct {
	Name      string  `json:"name" toml:"name" yaml:"name"`
	Paper     string  `json:"paper" toml:"paper" yaml:"paper"`
	DarkPaper string  `json:"dark_paper" toml:"dark_paper" yaml:"dark_paper"`
	Colors    []Color `json:"colors" toml:"colors" yaml:"colors"`
}

// At returns the ink for colour index i, modulo the palette size.
func (p Palette) At(i int) Color {
	n := len(p.Colors)
	if n == 0 {
		return Color{Name: "black", Main: "#000000", Highlight: "#ffffff"}
	}
	return p.Colors[((i%n)+n)%n]
}

// Stroke returns the stroke colour of index i on light or dark paper.
func (p Palette) Stroke(i int, dark bool) string {
	c := p.At(i)
	if dark {
		return c.Highlight
	}
	return c.Main
}

// Background returns the paper colour.
func (p Palette) Background(dark bool) string {
	if dark {
		return p.DarkPaper
	}
	return p.Paper
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate reports the first malformed field.
func (p Palette) Validate() error {
	if p.Name == "" {
		return errors.New(errors.ErrCodeInvalidPalette, "palette has no name")
	}
	if len(p.Colors) == 0 {
		return errors.New(errors.ErrCodeInvalidPalette, "palette %q has no colors", p.Name)
	}
	for _, field := range []struct{ name, v string }{{"paper", p.Paper}, {"dark_paper", p.DarkPaper}} {
		if !hexColor.MatchString(field.v) {
			return errors.New(errors.ErrCodeInvalidPalette, "palette %q: %s %q is not a hex color", p.Name, field.name, field.v)
		}
	}
	for i, c := range p.Colors {
		if !hexColor.MatchString(c.Main) || !hexColor.MatchString(c.Highlight) {
			return errors.New(errors.ErrCodeInvalidPalette, "palette %q: color %d (%s) is not a hex color pair", p.Name, i, c.Name)
		}
	}
	return nil
}

// Registry is a set of palettes keyed by name.
type Registry struct {
	palettes map[string]Palette
}

// NewRegistry returns a registry holding the built-in palettes.
func NewRegistry() *Registry {
	r := &Registry{palettes: make(map[string]Palette, len(builtin))}
	for _, p := range builtin {
		r.palettes[p.Name] = p
	}
	return r
}

// Add validates p and registers it, replacing any palette of the same name.
func (r *Registry) Add(p Palette) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.Colors = slices.Clone(p.Colors)
	r.palettes[p.Name] = p
	return nil
}

// Get returns the palette called name.
func (r *Registry) Get(name string) (Palette, error) {
	if name == "" {
		name = DefaultName
	}
	p, ok := r.palettes[name]
	if !ok {
		return Palette{}, errors.New(errors.ErrCodeInvalidPalette, "unknown palette %q (available: %v)", name, r.Names())
	}
	return p, nil
}

// Names returns the registered palette names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.palettes))
	for n := range r.palettes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// String implements fmt.Stringer for log output.
func (c Color) String() string { return fmt.Sprintf("%s(%s)", c.Name, c.Main) }

var builtin = []Palette{
	{
		Name:      "inks",
		Paper:     "#f8f4ec",
		DarkPaper: "#111111",
		Colors: []Color{
			{"Bloody Brexit", "#05206b", "#3d5dcc"},
			{"Amber", "#ffc745", "#ffd97a"},
			{"Poppy Red", "#e93246", "#ff6b7b"},
			{"Aurora Borealis", "#009d97", "#3fd6cf"},
		},
	},
	{
		Name:      "monochrome",
		Paper:     "#ffffff",
		DarkPaper: "#000000",
		Colors: []Color{
			{"Black", "#1a1a1a", "#f2f2f2"},
			{"Grey", "#777777", "#aaaaaa"},
		},
	},
	{
		Name:      "forest",
		Paper:     "#f4f1e6",
		DarkPaper: "#0d1a12",
		Colors: []Color{
			{"Evergreen", "#4d6a34", "#8fbf63"},
			{"Sherwood Green", "#337239", "#5fc76a"},
			{"Gold Leaf", "#d8b240", "#f0d070"},
		},
	},
	{
		Name:      "gel",
		Paper:     "#1c1c1c",
		DarkPaper: "#000000",
		Colors: []Color{
			{"White Gel", "#ffffff", "#ffffff"},
			{"Silver Gel", "#cccccc", "#dddddd"},
			{"Gold Gel", "#d8b240", "#e8c860"},
		},
	},
}
