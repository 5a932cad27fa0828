// Package server serves plots over HTTP.
//
// Routes:
//
//	GET /healthz                    liveness and build version
//	GET /palettes                   registered palettes
//	GET /plots/{seed}               plot metadata as JSON
//	GET /plots/{seed}.{format}      plot as svg, png, pdf or json
//	GET /plots/{seed}/tree.{format} subdivision tree as svg, png, pdf or dot
//
// Plot routes accept the generation and render options as query parameters
// (width, height, pad, depth, density, pen, symmetric, sun, background,
// palette, paper, blend, scale). Output is a pure function of the URL, so
// responses are cacheable forever.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gre/shattered/pkg/archive"
	"github.com/gre/shattered/pkg/buildinfo"
	"github.com/gre/shattered/pkg/cache"
	"github.com/gre/shattered/pkg/errors"
	"github.com/gre/shattered/pkg/pipeline"
	"github.com/gre/shattered/pkg/render/palette"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 60 * time.Second

// Config holds the server dependencies.
type Config struct {
	Runner *pipeline.Runner

	// Defaults fills options the query leaves unset.
	Defaults pipeline.Options

	Palettes *palette.Registry

	// Archive records every newly generated plot when set.
	Archive *archive.Archive

	Logger  *log.Logger
	Timeout time.Duration
}

// Server is the HTTP front end of the pipeline.
type Server struct {
	cfg    Config
	router chi.Router
}

// New builds a server and its routes.
func New(cfg Config) *Server {
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Palettes == nil {
		cfg.Palettes = palette.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	s := &Server{cfg: cfg}
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.SetHeader("Server", buildinfo.UserAgent()))
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Timeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/palettes", s.handlePalettes)
	r.Route("/plots", func(r chi.Router) {
		r.Get("/{seed}", s.handleMeta)
		r.Get("/{seed}.{format}", s.handlePlot)
		r.Get("/{seed}/tree.{format}", s.handleTree)
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.cfg.Logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handlePalettes(w http.ResponseWriter, r *http.Request) {
	names := s.cfg.Palettes.Names()
	out := make([]palette.Palette, 0, len(names))
	for _, n := range names {
		p, _ := s.cfg.Palettes.Get(n)
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

type plotMeta struct {
	Seed      string  `json:"seed"`
	Hash      string  `json:"hash"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	MaxDepth  int     `json:"max_depth"`
	Attempts  int     `json:"attempts"`
	Leaves    int     `json:"leaves"`
	Routes    int     `json:"routes"`
	Colors    int     `json:"colors"`
	Dark      bool    `json:"dark"`
	PaperSeed float64 `json:"paper_seed"`
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r, pipeline.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r.Context(), res, opts)

	p := res.Plot
	writeJSON(w, http.StatusOK, plotMeta{
		Seed:      p.Seed,
		Hash:      res.PlotHash,
		Width:     p.Width,
		Height:    p.Height,
		MaxDepth:  p.MaxDepth,
		Attempts:  p.Attempts,
		Leaves:    len(p.Leaves),
		Routes:    len(p.Routes),
		Colors:    p.ColorCount(),
		Dark:      p.Dark,
		PaperSeed: p.PaperSeed,
	})
}

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.options(r, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r.Context(), res, opts)

	w.Header().Set("X-Plot-Hash", res.PlotHash)
	w.Header().Set("X-Cache", cacheStatus(res.CacheInfo.RenderHit))
	writeArtifact(w, r, format, res.Artifacts[format])
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	opts, err := s.options(r, "")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.cfg.Runner.Tree(r.Context(), opts, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, r, format, data)
}

// record archives plots generated by this request. Failures are logged,
// since the response is already computed.
func (s *Server) record(ctx context.Context, res *pipeline.Result, opts pipeline.Options) {
	if s.cfg.Archive == nil || res.CacheInfo.GenerateHit {
		return
	}
	params, _ := json.Marshal(opts)
	p := res.Plot
	_, err := s.cfg.Archive.Record(ctx, archive.Entry{
		Seed:     p.Seed,
		Palette:  opts.Palette,
		Width:    p.Width,
		Height:   p.Height,
		MaxDepth: p.MaxDepth,
		Attempts: p.Attempts,
		Leaves:   len(p.Leaves),
		Routes:   len(p.Routes),
		Dark:     p.Dark,
		PlotHash: res.PlotHash,
		Params:   params,
	})
	if err != nil {
		s.cfg.Logger.Warn("archive failed", "seed", p.Seed, "err", err)
	}
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	"dot":               "text/vnd.graphviz; charset=utf-8",
}

func writeArtifact(w http.ResponseWriter, r *http.Request, format string, data []byte) {
	etag := strconv.Quote(cache.Hash(data)[:16])
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type errorBody struct {
	Error     string      `json:"error"`
	Code      errors.Code `json:"code,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if r.Context().Err() == context.DeadlineExceeded {
		status = http.StatusServiceUnavailable
	}
	if status >= 500 {
		s.cfg.Logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{
		Error:     errors.UserMessage(err),
		Code:      errors.GetCode(err),
		RequestID: RequestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
