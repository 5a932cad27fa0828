package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gre/shattered/pkg/archive"
	"github.com/gre/shattered/pkg/core/rng"
	"github.com/gre/shattered/pkg/errors"
	"github.com/gre/shattered/pkg/pipeline"
)

// generateOpts holds the flags shared by generate and tree.
type generateOpts struct {
	pipeline.Options

	random  bool
	phrase  string
	formats string
	output  string
	noCache bool
}

// bindGenerateFlags registers the canvas flags on cmd.
func bindGenerateFlags(cmd *cobra.Command, opts *generateOpts) {
	f := cmd.Flags()
	f.BoolVar(&opts.random, "random", false, "draw a random seed")
	f.StringVar(&opts.phrase, "phrase", "", "derive the seed from a phrase")
	f.Float64Var(&opts.Width, "width", 0, "canvas width in mm (default 297)")
	f.Float64Var(&opts.Height, "height", 0, "canvas height in mm (default 210)")
	f.Float64Var(&opts.Pad, "pad", 0, "frame padding in mm (default 10)")
	f.IntVar(&opts.MaxDepth, "depth", 0, "recursion depth (default: chosen by the seed)")
	f.Float64Var(&opts.Density, "density", 0, "fill density multiplier (default 1)")
	f.Float64Var(&opts.PenWidth, "pen", 0, "pen width in mm (default 0.35)")
	f.BoolVar(&opts.Symmetric, "symmetric", false, "mirror the composition")
	f.BoolVar(&opts.Sun, "sun", false, "draw a sun disc before the shards")
	f.BoolVar(&opts.Background, "background", false, "hatch the uninked background")
	f.StringVarP(&opts.Palette, "palette", "p", "", "ink palette (see 'shattered palettes')")
	f.StringVarP(&opts.output, "output", "o", "", "output path (extension replaced per format)")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	f.BoolVar(&opts.Refresh, "refresh", false, "regenerate even when cached")
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	opts := &generateOpts{}

	cmd := &cobra.Command{
		Use:   "generate [seed]",
		Short: "Generate a plot from a seed",
		Long: `Generate shatters the canvas for a seed and writes the plot in one or
more formats. Without a seed, pass --random or --phrase.`,
		Example: `  shattered generate 0x0000123456789abcdef0011223344556677
  shattered generate --random -f svg,png --palette forest
  shattered generate --phrase "sunday morning" --sun -o sunday.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveSeed(opts, args); err != nil {
				return err
			}
			opts.Formats = parseFormats(opts.formats)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), opts)
		},
	}

	bindGenerateFlags(cmd, opts)
	f := cmd.Flags()
	f.StringVarP(&opts.formats, "format", "f", "", "output formats: svg, png, pdf, json (comma-separated)")
	f.BoolVar(&opts.Paper, "paper", false, "paint the paper colour behind SVG and PDF output")
	f.BoolVar(&opts.Blend, "blend", false, "blend overlapping inks (multiply)")
	f.Float64Var(&opts.Scale, "scale", 0, "PNG pixels per mm (default 4)")

	return cmd
}

// resolveSeed picks the seed from args, --random or --phrase.
func resolveSeed(opts *generateOpts, args []string) error {
	sources := 0
	if len(args) == 1 {
		opts.Seed = args[0]
		sources++
	}
	if opts.random {
		opts.Seed = rng.RandomSeed()
		sources++
	}
	if opts.phrase != "" {
		opts.Seed = rng.SeedFromString(opts.phrase)
		sources++
	}
	switch sources {
	case 0:
		return errors.New(errors.ErrCodeInvalidSeed, "seed required: pass a seed, --random or --phrase")
	case 1:
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidInput, "use only one of seed, --random and --phrase")
	}
}

func (c *CLI) runGenerate(ctx context.Context, opts *generateOpts) error {
	if err := c.setCLIDefaults(&opts.Options); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Shattering "+shortSeed(opts.Seed)+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts.Options)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.StopWithSuccess("Plot " + StyleHighlight.Render(opts.Seed))
	printStats(result.Stats.LeafCount, result.Stats.RouteCount, result.Stats.Attempts, result.CacheInfo.GenerateHit)

	base := basePath(opts.output, opts.Seed)
	written, err := writeArtifacts(base, opts.Formats, result.Artifacts)
	if err != nil {
		return err
	}
	for _, path := range written {
		printFile(path)
	}

	if !result.CacheInfo.GenerateHit {
		c.record(ctx, result, opts.Options, written)
	}
	return nil
}

// record adds a freshly generated plot to the archive. Failures only warn;
// the files are already written.
func (c *CLI) record(ctx context.Context, result *pipeline.Result, opts pipeline.Options, written []string) {
	a, err := c.openArchive()
	if err != nil {
		c.Logger.Warn("archive unavailable", "err", err)
		return
	}
	if a == nil {
		return
	}
	defer a.Close()

	params, err := json.Marshal(opts)
	if err != nil {
		c.Logger.Warn("encode params", "err", err)
		return
	}
	p := result.Plot
	entry, err := a.Record(ctx, archive.Entry{
		Seed:     p.Seed,
		Palette:  opts.Palette,
		Width:    p.Width,
		Height:   p.Height,
		MaxDepth: p.MaxDepth,
		Attempts: p.Attempts,
		Leaves:   len(p.Leaves),
		Routes:   len(p.Routes),
		Dark:     p.Dark,
		PlotHash: result.PlotHash,
		Output:   strings.Join(written, ","),
		Params:   params,
	})
	if err != nil {
		c.Logger.Warn("archive failed", "seed", p.Seed, "err", err)
		return
	}
	c.Logger.Debug("archived", "id", entry.ID)
}

// writeArtifacts writes one file per format next to base and returns the
// paths in format order.
func writeArtifacts(base string, formats []string, artifacts map[string][]byte) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath returns the output path without extension. An empty output
// names the file in the working directory after the seed, keeping only its
// alphanumeric characters.
func basePath(output, seed string) string {
	if output != "" {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	name := strings.Map(func(r rune) rune {
		if ('0' <= r && r <= '9') || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			return r
		}
		return -1
	}, shortSeed(seed))
	if name == "" {
		name = "plot"
	}
	return appName + "-" + name
}

// shortSeed returns the distinguishing tail of a seed for display and
// file names. Characters past the part the RNG reads are ignored.
func shortSeed(seed string) string {
	const n = 10
	seed = seed[:min(len(seed), rng.MinSeedLength)]
	if len(seed) <= n {
		return seed
	}
	return seed[len(seed)-n:]
}
