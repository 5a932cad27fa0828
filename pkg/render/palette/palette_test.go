package palette

import (
	"testing"

	"github.com/gre/shattered/pkg/errors"
)

func TestBuiltinsValid(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.Names() {
		p, err := r.Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("builtin %q invalid: %v", name, err)
		}
	}
	if _, err := r.Get(""); err != nil {
		t.Errorf("Get(\"\") should return the default palette: %v", err)
	}
}

func TestAtWraps(t *testing.T) {
	p := Palette{Colors: []Color{{"a", "#000", "#fff"}, {"b", "#111", "#eee"}, {"c", "#222", "#ddd"}}}
	tests := []struct {
		i    int
		want string
	}{
		{0, "a"}, {2, "c"}, {3, "a"}, {7, "b"}, {-1, "c"},
	}
	for _, tt := range tests {
		if got := p.At(tt.i).Name; got != tt.want {
			t.Errorf("At(%d) = %s, want %s", tt.i, got, tt.want)
		}
	}
	if got := p.Stroke(1, true); got != "#eee" {
		t.Errorf("Stroke(1, dark) = %s, want highlight", got)
	}
	if got := (Palette{}).At(5).Main; got != "#000000" {
		t.Errorf("empty palette At() = %s, want black", got)
	}
}

func TestValidate(t *testing.T) {
	ok := Palette{Name: "x", Paper: "#fff", DarkPaper: "#000", Colors: []Color{{"ink", "#123456", "#abcdef"}}}
	tests := []struct {
		name   string
		mutate func(*Palette)
	}{
		{"no name", func(p *Palette) { p.Name = "" }},
		{"no colors", func(p *Palette) { p.Colors = nil }},
		{"bad paper", func(p *Palette) { p.Paper = "white" }},
		{"bad ink", func(p *Palette) { p.Colors = []Color{{"ink", "#12345", "#abcdef"}} }},
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid palette rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ok
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, errors.ErrCodeInvalidPalette) {
				t.Errorf("Validate() = %v, want INVALID_PALETTE", err)
			}
		})
	}
}

func TestRegistryAdd(t *testing.T) {
	r := NewRegistry()
	custom := Palette{Name: "custom", Paper: "#fff", DarkPaper: "#000", Colors: []Color{{"ink", "#123456", "#abcdef"}}}
	if err := r.Add(custom); err != nil {
		t.Fatal(err)
	}
	got, err := r.Get("custom")
	if err != nil || got.At(0).Main != "#123456" {
		t.Errorf("Get(custom) = %+v, %v", got, err)
	}
	if err := r.Add(Palette{Name: "broken"}); err == nil {
		t.Error("Add() accepted an invalid palette")
	}
	if _, err := r.Get("nope"); !errors.Is(err, errors.ErrCodeInvalidPalette) {
		t.Errorf("Get(unknown) = %v, want INVALID_PALETTE", err)
	}
}
