package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gre/shattered/pkg/core/art"
)

// WriteJSON encodes a plot as JSON and writes it to w. paletteName is
// recorded for re-rendering and may be empty.
// The output can be re-imported with [ReadJSON].
func WriteJSON(p *art.Plot, paletteName string, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(encodePlot(p, paletteName)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a plot to a JSON file at path.
func ExportJSON(p *art.Plot, paletteName, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(p, paletteName, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
