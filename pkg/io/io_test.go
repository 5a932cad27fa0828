package io

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gre/shattered/pkg/core/art"
	"github.com/gre/shattered/pkg/errors"
)

func generated(t *testing.T) *art.Plot {
	t.Helper()
	opts := art.DefaultOptions()
	opts.MaxDepth = 3
	p, err := art.Generate("0x0000123456789abcdef0011223344556677", opts)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestExportImport(t *testing.T) {
	p := generated(t)
	path := filepath.Join(t.TempDir(), "plot.json")
	if err := ExportJSON(p, "forest", path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	imp, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if imp.Palette != "forest" {
		t.Errorf("Palette = %q, want forest", imp.Palette)
	}
	want := *p
	want.Tree = nil
	if !reflect.DeepEqual(imp.Plot, &want) {
		t.Error("imported plot differs from the exported one")
	}
}

func TestReadJSONRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"malformed", `{"version": 1,`, errors.ErrCodeInvalidPlot},
		{"missing routes", `{"version": 1, "seed": "s", "width": 10, "height": 10}`, errors.ErrCodeInvalidPlot},
		{"wrong version", `{"version": 2, "seed": "s", "width": 10, "height": 10, "routes": []}`, errors.ErrCodeInvalidPlot},
		{"negative width", `{"version": 1, "seed": "s", "width": -1, "height": 10, "routes": []}`, errors.ErrCodeInvalidPlot},
		{"bad point", `{"version": 1, "seed": "s", "width": 10, "height": 10, "routes": [{"color": 0, "points": [[1, 2, 3]]}]}`, errors.ErrCodeInvalidPlot},
		{"huge route color", `{"version": 1, "seed": "s", "width": 10, "height": 10, "routes": [{"color": 4611686018427387904, "points": [[1, 2]]}]}`, errors.ErrCodeInvalidPlot},
		{"huge leaf color", `{"version": 1, "seed": "s", "width": 10, "height": 10, "routes": [], "leaves": [{"color": 256, "style": "plain", "polygon": []}]}`, errors.ErrCodeInvalidPlot},
		{"oversized canvas", `{"version": 1, "seed": "s", "width": 1e9, "height": 10, "routes": []}`, errors.ErrCodeInvalidPlot},
		{"bad style", `{"version": 1, "seed": "s", "width": 10, "height": 10, "routes": [], "leaves": [{"color": 0, "style": "swirl", "polygon": []}]}`, errors.ErrCodeInvalidPlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.doc))
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadJSON() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReadJSONMinimal(t *testing.T) {
	doc := `{"version": 1, "seed": "hand", "width": 100, "height": 50,
		"routes": [{"color": 2, "points": [[1, 2], [3, 4]]}]}`
	imp, err := ReadJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	p := imp.Plot
	if p.Width != 100 || len(p.Routes) != 1 || p.Routes[0].ColorIndex != 2 {
		t.Errorf("plot = %+v", p)
	}
	if got := p.Routes[0].Points[1]; got.X != 3 || got.Y != 4 {
		t.Errorf("second point = %v, want (3, 4)", got)
	}
	if p.ColorCount() != 3 {
		t.Errorf("ColorCount() = %d, want 3", p.ColorCount())
	}
}

func TestWriteJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(generated(t), "", &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`"version": 1`, `"routes": [`, `"style": "`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}
	if strings.Contains(out, `"palette"`) {
		t.Error("empty palette should be omitted")
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	_, err := ImportJSON(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportJSON() error = %v, want FILE_NOT_FOUND", err)
	}
}
