package pipeline

import (
	"context"
	"time"

	"github.com/gre/shattered/pkg/core/art"
	"github.com/gre/shattered/pkg/observability"
)

// Generate produces the plot for opts.Seed without caching.
func Generate(ctx context.Context, opts Options) (*art.Plot, error) {
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnGenerateStart(ctx, opts.Seed)
	start := time.Now()

	plot, err := art.Generate(opts.Seed, opts.ArtOptions())

	attempts := 0
	if plot != nil {
		attempts = plot.Attempts
		opts.Logger.Debug("generated plot",
			"seed", opts.Seed,
			"depth", plot.MaxDepth,
			"attempts", plot.Attempts,
			"leaves", len(plot.Leaves))
	}
	hooks.OnGenerateComplete(ctx, opts.Seed, attempts, time.Since(start), err)
	return plot, err
}
