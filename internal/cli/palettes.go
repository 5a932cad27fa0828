package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// palettesCommand lists the built-in and configured palettes.
func (c *CLI) palettesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "palettes",
		Short: "List available ink palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.Config.Registry()
			if err != nil {
				return err
			}
			for _, name := range reg.Names() {
				p, err := reg.Get(name)
				if err != nil {
					return err
				}
				swatches := make([]string, len(p.Colors))
				for i, ink := range p.Colors {
					swatches[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(ink.Main)).Render("■ " + ink.Name)
				}
				fmt.Fprintf(stdout, "%s  %s\n", StyleTitle.Width(12).Render(p.Name), strings.Join(swatches, "  "))
				printDetail("paper %s · dark %s", p.Paper, p.DarkPaper)
			}
			return nil
		},
	}
}
