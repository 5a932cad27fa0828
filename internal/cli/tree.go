package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gre/shattered/pkg/errors"
)

// treeFormats lists the diagram formats accepted by the tree command.
var treeFormats = []string{"svg", "dot", "png", "pdf"}

// treeCommand creates the tree command, which draws the subdivision tree
// behind a plot.
func (c *CLI) treeCommand() *cobra.Command {
	opts := &generateOpts{}
	var format string

	cmd := &cobra.Command{
		Use:   "tree [seed]",
		Short: "Render the subdivision tree of a plot",
		Long: `Tree regenerates a plot and renders its recursion as a Graphviz diagram:
internal nodes show the cut angle, leaves show their fill style and ink.`,
		Example: `  shattered tree 0x0000123456789abcdef0011223344556677
  shattered tree --phrase "sunday morning" --format dot -o sunday`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveSeed(opts, args); err != nil {
				return err
			}
			if !validTreeFormat(format) {
				return errors.New(errors.ErrCodeInvalidFormat, "invalid tree format: %q (must be one of: svg, dot, png, pdf)", format)
			}
			return c.runTree(cmd.Context(), opts, format)
		},
	}

	bindGenerateFlags(cmd, opts)
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "diagram format: svg, dot, png, pdf")

	return cmd
}

func validTreeFormat(format string) bool {
	for _, f := range treeFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (c *CLI) runTree(ctx context.Context, opts *generateOpts, format string) error {
	if err := c.setCLIDefaults(&opts.Options); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	data, err := runner.Tree(ctx, opts.Options, format)
	if err != nil {
		return err
	}
	prog.done("Rendered tree", "format", format, "bytes", len(data))

	path := basePath(opts.output, opts.Seed) + "-tree." + format
	if opts.output != "" {
		path = basePath(opts.output, opts.Seed) + "." + format
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess("Tree %s", StyleHighlight.Render(opts.Seed))
	printFile(path)
	return nil
}
