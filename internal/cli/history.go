package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/gre/shattered/pkg/archive"
	"github.com/gre/shattered/pkg/errors"
	"github.com/gre/shattered/pkg/pipeline"
)

// historyCommand creates the history command and its subcommands.
func (c *CLI) historyCommand() *cobra.Command {
	var opts archive.ListOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived plots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withArchive(func(a *archive.Archive) error {
				return c.runHistory(cmd.Context(), a, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Seed, "seed", "", "only seeds starting with this prefix")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of entries")

	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyRemoveCommand())

	return cmd
}

func (c *CLI) historyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an archived plot and the options that made it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withArchive(func(a *archive.Archive) error {
				e, err := a.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printEntry(e)
				return nil
			})
		},
	}
}

func (c *CLI) historyRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove an archived plot",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withArchive(func(a *archive.Archive) error {
				e, err := a.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := a.Delete(cmd.Context(), e.ID); err != nil {
					return err
				}
				printSuccess("Removed %s", e.ShortID())
				return nil
			})
		},
	}
}

// withArchive opens the archive for the duration of fn.
func (c *CLI) withArchive(fn func(*archive.Archive) error) error {
	a, err := c.openArchive()
	if err != nil {
		return err
	}
	if a == nil {
		return errors.New(errors.ErrCodeUnsupported, "archive is disabled in the config")
	}
	defer a.Close()
	return fn(a)
}

func (c *CLI) runHistory(ctx context.Context, a *archive.Archive, opts archive.ListOptions) error {
	entries, err := a.List(ctx, opts)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		printInfo("No plots archived yet")
		printNextStep("Make one", appName+" generate --random")
		return nil
	}
	total, err := a.Count(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, historyTable(entries).Render())
	printDetail("%d of %d plots", len(entries), total)
	return nil
}

// historyTable renders entries as a bordered table.
func historyTable(entries []archive.Entry) *table.Table {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			e.ShortID(),
			e.Seed,
			orDash(e.Palette),
			strconv.Itoa(e.Leaves),
			strconv.Itoa(e.Routes),
			formatRelativeTime(e.CreatedAt),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Seed", "Palette", "Leaves", "Routes", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col == 5:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})
}

func printEntry(e archive.Entry) {
	printKeyValue("ID", e.ID)
	printKeyValue("Seed", e.Seed)
	printKeyValue("Palette", orDash(e.Palette))
	printKeyValue("Canvas", fmt.Sprintf("%g × %g mm", e.Width, e.Height))
	printKeyValue("Depth", strconv.Itoa(e.MaxDepth))
	printKeyValue("Attempts", strconv.Itoa(e.Attempts))
	printKeyValue("Shards", fmt.Sprintf("%d leaves · %d routes", e.Leaves, e.Routes))
	printKeyValue("Dark", strconv.FormatBool(e.Dark))
	printKeyValue("Output", orDash(e.Output))
	printKeyValue("Created", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if opts, err := entryOptions(e); err == nil {
		printKeyValue("Regenerate", regenerateCommand(opts))
	}
}

// entryOptions decodes the pipeline options stored with an entry.
func entryOptions(e archive.Entry) (pipeline.Options, error) {
	var opts pipeline.Options
	if len(e.Params) > 0 {
		if err := json.Unmarshal(e.Params, &opts); err != nil {
			return opts, errors.Wrap(errors.ErrCodeArchive, err, "decode params of %s", e.ShortID())
		}
	}
	if opts.Seed == "" {
		opts.Seed = e.Seed
	}
	opts.Refresh = false
	return opts, nil
}

// regenerateCommand returns a generate invocation reproducing opts.
func regenerateCommand(opts pipeline.Options) string {
	cmd := appName + " generate " + opts.Seed
	flag := func(name string, v float64, def float64) {
		if v != 0 && v != def {
			cmd += fmt.Sprintf(" --%s %g", name, v)
		}
	}
	flag("width", opts.Width, pipeline.DefaultWidth)
	flag("height", opts.Height, pipeline.DefaultHeight)
	flag("pad", opts.Pad, pipeline.DefaultPad)
	flag("density", opts.Density, pipeline.DefaultDensity)
	flag("pen", opts.PenWidth, pipeline.DefaultPenWidth)
	if opts.MaxDepth > 0 {
		cmd += " --depth " + strconv.Itoa(opts.MaxDepth)
	}
	switches := []struct {
		name string
		on   bool
	}{{"symmetric", opts.Symmetric}, {"sun", opts.Sun}, {"background", opts.Background}}
	for _, s := range switches {
		if s.on {
			cmd += " --" + s.name
		}
	}
	if opts.Palette != "" {
		cmd += " --palette " + opts.Palette
	}
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
