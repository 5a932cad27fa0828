package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	plotio "github.com/gre/shattered/pkg/io"
	"github.com/gre/shattered/pkg/pipeline"
)

type importOpts struct {
	pipeline.Options

	formats string
	output  string
}

// importCommand creates the import command, which renders a plot exported
// as JSON.
func (c *CLI) importCommand() *cobra.Command {
	opts := &importOpts{}

	cmd := &cobra.Command{
		Use:   "import <plot.json>",
		Short: "Render a plot from its JSON export",
		Long: `Import reads a plot written with --format json (or edited by hand),
validates it and renders it again. The palette stored in the file is used
unless --palette overrides it.`,
		Example: `  shattered import plot.json -f png --scale 8
  shattered import plot.json --palette gel -o gel.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(opts.formats)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runImport(cmd.Context(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.formats, "format", "f", "", "output formats: svg, png, pdf, json (comma-separated)")
	f.StringVarP(&opts.output, "output", "o", "", "output path (default: input name)")
	f.StringVarP(&opts.Palette, "palette", "p", "", "ink palette (default: the one in the file)")
	f.Float64Var(&opts.PenWidth, "pen", 0, "pen width in mm (default 0.35)")
	f.BoolVar(&opts.Paper, "paper", false, "paint the paper colour behind SVG and PDF output")
	f.BoolVar(&opts.Blend, "blend", false, "blend overlapping inks (multiply)")
	f.Float64Var(&opts.Scale, "scale", 0, "PNG pixels per mm (default 4)")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, input string, opts *importOpts) error {
	imp, err := plotio.ImportJSON(input)
	if err != nil {
		return err
	}
	if opts.Palette == "" {
		opts.Palette = imp.Palette
	}
	opts.Seed = imp.Plot.Seed
	if err := c.setCLIDefaults(&opts.Options); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	artifacts, err := runner.Render(ctx, imp.Plot, opts.Options)
	if err != nil {
		return err
	}
	prog.done("Rendered imported plot", "formats", opts.Formats)

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input))
	}
	written, err := writeArtifacts(basePath(output, imp.Plot.Seed), opts.Formats, artifacts)
	if err != nil {
		return err
	}

	p := imp.Plot
	printSuccess("Imported %s", StyleHighlight.Render(p.Seed))
	printStats(len(p.Leaves), len(p.Routes), p.Attempts, false)
	for _, path := range written {
		printFile(path)
	}
	return nil
}
