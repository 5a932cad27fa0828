package server

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gre/shattered/pkg/errors"
	"github.com/gre/shattered/pkg/pipeline"
)

// options builds pipeline options from the route and query, on top of the
// configured defaults.
func (s *Server) options(r *http.Request, format string) (pipeline.Options, error) {
	opts := s.cfg.Defaults
	opts.Seed = chi.URLParam(r, "seed")
	opts.Palettes = s.cfg.Palettes
	opts.Logger = nil
	opts.Formats = nil
	if format != "" {
		opts.Formats = []string{format}
	}

	q := r.URL.Query()
	p := queryParser{q: q}
	p.float("width", &opts.Width)
	p.float("height", &opts.Height)
	p.float("pad", &opts.Pad)
	p.int("depth", &opts.MaxDepth)
	p.float("density", &opts.Density)
	p.float("pen", &opts.PenWidth)
	p.float("scale", &opts.Scale)
	p.bool("symmetric", &opts.Symmetric)
	p.bool("sun", &opts.Sun)
	p.bool("background", &opts.Background)
	p.bool("paper", &opts.Paper)
	p.bool("blend", &opts.Blend)
	if v := q.Get("palette"); v != "" {
		opts.Palette = v
	}
	if p.err != nil {
		return opts, p.err
	}
	return opts, nil
}

// queryParser records the first malformed parameter.
type queryParser struct {
	q   url.Values
	err error
}

func (p *queryParser) float(name string, dst *float64) {
	v := p.q.Get(name)
	if v == "" || p.err != nil {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		p.err = errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %s=%q is not a finite number", name, v)
		return
	}
	*dst = f
}

func (p *queryParser) int(name string, dst *int) {
	v := p.q.Get(name)
	if v == "" || p.err != nil {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.err = errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %s=%q is not an integer", name, v)
		return
	}
	*dst = n
}

func (p *queryParser) bool(name string, dst *bool) {
	if !p.q.Has(name) || p.err != nil {
		return
	}
	v := p.q.Get(name)
	if v == "" {
		*dst = true
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.err = errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %s=%q is not a boolean", name, v)
		return
	}
	*dst = b
}
