package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gre/shattered/pkg/archive"
)

// browseCommand opens an interactive picker over the archive and
// regenerates the chosen plot.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		limit   int
		formats string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Pick an archived plot interactively and regenerate it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withArchive(func(a *archive.Archive) error {
				e, err := pickEntry(cmd.Context(), a, limit)
				if err != nil || e == nil {
					return err
				}
				return c.regenerate(cmd.Context(), *e, formats, output)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 200, "maximum number of entries to list")
	cmd.Flags().StringVarP(&formats, "format", "f", "", "output formats: svg, png, pdf, json (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (extension replaced per format)")

	return cmd
}

// pickEntry runs the picker. It returns nil when the user quits without
// choosing.
func pickEntry(ctx context.Context, a *archive.Archive, limit int) (*archive.Entry, error) {
	entries, err := a.List(ctx, archive.ListOptions{Limit: limit})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		printInfo("No plots archived yet")
		printNextStep("Make one", appName+" generate --random")
		return nil, nil
	}

	final, err := tea.NewProgram(NewEntryListModel(entries), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("browse: %w", err)
	}
	return final.(EntryListModel).Selected, nil
}

// regenerate rebuilds an archived plot from its stored options.
func (c *CLI) regenerate(ctx context.Context, e archive.Entry, formats, output string) error {
	params, err := entryOptions(e)
	if err != nil {
		return err
	}
	opts := &generateOpts{Options: params, output: output}
	opts.Formats = parseFormats(formats)
	return c.runGenerate(ctx, opts)
}
