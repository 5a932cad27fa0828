package sink

import (
	"bytes"

	"github.com/gre/shattered/pkg/core/art"
	plotio "github.com/gre/shattered/pkg/io"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	palette string
}

// WithJSONPalette records the palette name so an import renders with the
// same inks.
func WithJSONPalette(name string) JSONOption { return func(r *jsonRenderer) { r.palette = name } }

// RenderJSON exports the plot in the format read back by [plotio.ReadJSON].
func RenderJSON(p *art.Plot, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	var buf bytes.Buffer
	if err := plotio.WriteJSON(p, r.palette, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
