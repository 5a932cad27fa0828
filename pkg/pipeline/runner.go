package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gre/shattered/pkg/cache"
	"github.com/gre/shattered/pkg/core/art"
	plotio "github.com/gre/shattered/pkg/io"
	"github.com/gre/shattered/pkg/observability"
	"github.com/gre/shattered/pkg/render/sink"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner holds no per-run state, so multiple goroutines can use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete generate → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	genStart := time.Now()
	plot, plotHash, genHit, err := r.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Plot = plot
	result.PlotHash = plotHash
	result.Stats.GenerateTime = time.Since(genStart)
	result.Stats.Attempts = plot.Attempts
	result.Stats.LeafCount = len(plot.Leaves)
	result.Stats.RouteCount = len(plot.Routes)
	result.CacheInfo.GenerateHit = genHit

	r.Logger.Info("generated plot",
		"seed", plot.Seed,
		"leaves", len(plot.Leaves),
		"routes", len(plot.Routes),
		"attempts", plot.Attempts,
		"cached", genHit,
		"duration", result.Stats.GenerateTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, plot, plotHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"palette", opts.Palette,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateWithCacheInfo returns the plot for opts, its content hash and
// whether it came from the cache. Cached plots carry no subdivision tree.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (*art.Plot, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, "", false, err
	}

	cacheKey := r.Keyer.PlotKey(opts.Seed, opts.PlotKeyOpts())

	if !opts.Refresh {
		if data, hit := r.get(ctx, "plot", cacheKey); hit {
			imp, err := plotio.ReadJSON(bytes.NewReader(data))
			if err == nil {
				return imp.Plot, cache.Hash(data), true, nil
			}
			r.Logger.Warn("discarding unreadable cached plot", "key", cacheKey, "err", err)
		}
	}

	plot, err := Generate(ctx, opts)
	if err != nil {
		return nil, "", false, err
	}

	data, err := sink.RenderJSON(plot)
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize plot: %w", err)
	}
	r.set(ctx, "plot", cacheKey, data, cache.TTLPlot)

	return plot, cache.Hash(data), false, nil
}

// Generate is a convenience wrapper that calls GenerateWithCacheInfo and
// discards the hash and cache hit info.
func (r *Runner) Generate(ctx context.Context, opts Options) (*art.Plot, error) {
	p, _, _, err := r.GenerateWithCacheInfo(ctx, opts)
	return p, err
}

// RenderWithCacheInfo renders p with caching and reports whether every
// artifact came from the cache. An empty plotHash is computed from p.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, p *art.Plot, plotHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	if plotHash == "" {
		data, err := sink.RenderJSON(p)
		if err != nil {
			return nil, false, fmt.Errorf("serialize plot for cache key: %w", err)
		}
		plotHash = cache.Hash(data)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(plotHash, opts.ArtifactKeyOpts(format))
		if data, hit := r.get(ctx, "artifact", key); hit {
			artifacts[format] = data
		} else {
			missing = append(missing, format)
		}
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, p, renderOpts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(plotHash, opts.ArtifactKeyOpts(format))
		r.set(ctx, "artifact", key, data, cache.TTLArtifact)
		artifacts[format] = data
	}

	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, p *art.Plot, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, p, "", opts)
	return artifacts, err
}

// Tree renders the subdivision tree diagram for opts.Seed. Trees are not
// part of cached plots, so a miss always regenerates.
func (r *Runner) Tree(ctx context.Context, opts Options, format string) ([]byte, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, err
	}
	opts.SetRenderDefaults()

	plotKey := r.Keyer.PlotKey(opts.Seed, opts.PlotKeyOpts())
	key := r.Keyer.TreeKey(cache.Hash([]byte(plotKey+"|"+opts.Palette)), format)
	if !opts.Refresh {
		if data, hit := r.get(ctx, "tree", key); hit {
			return data, nil
		}
	}

	plot, err := Generate(ctx, opts)
	if err != nil {
		return nil, err
	}
	data, err := RenderTree(ctx, plot, format, opts)
	if err != nil {
		return nil, err
	}
	r.set(ctx, "tree", key, data, cache.TTLTree)
	return data, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// get reads key, treating backend errors as a miss.
func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return nil, false
}

// set writes key, logging and otherwise ignoring failures.
func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
