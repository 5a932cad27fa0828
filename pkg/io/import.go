package io

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/gre/shattered/pkg/core/art"
	"github.com/gre/shattered/pkg/errors"
)

//go:embed plot.schema.json
var schemaSource string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func plotSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("plot.schema.json", schemaSource)
	})
	return schema, schemaErr
}

// Imported is a decoded plot file.
type Imported struct {
	Plot    *art.Plot
	Palette string // palette recorded at export, possibly empty
}

// ReadJSON decodes a plot from r.
//
// The document is validated against the plot JSON schema before decoding;
// schema violations are reported as INVALID_PLOT errors naming the failing
// location. The returned plot carries no subdivision tree. ReadJSON does not
// close r.
func ReadJSON(r io.Reader) (*Imported, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPlot, err, "decode")
	}
	s, err := plotSchema()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "compile plot schema")
	}
	if err := s.Validate(doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPlot, err, "plot does not match schema")
	}

	var f plotFile
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPlot, err, "decode")
	}
	return &Imported{Plot: decodePlot(f), Palette: f.Palette}, nil
}

// ImportJSON reads the plot file at path.
func ImportJSON(path string) (*Imported, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	imp, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return imp, nil
}
