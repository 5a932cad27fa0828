package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gre/shattered/pkg/archive"
)

var (
	pickerHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	pickerCursorStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	pickerSeedStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// pickerChrome is the number of terminal rows View uses around the table.
const pickerChrome = 10

// EntryListModel is the bubbletea model behind "shattered browse". It
// scrolls a window of Height rows over Entries and sets Selected on enter.
type EntryListModel struct {
	Entries  []archive.Entry
	Cursor   int
	Selected *archive.Entry
	Height   int
	Offset   int
}

func NewEntryListModel(entries []archive.Entry) EntryListModel {
	return EntryListModel{Entries: entries, Height: 15}
}

func (m EntryListModel) Init() tea.Cmd { return nil }

func (m EntryListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-pickerChrome, 5)
		m.move(0)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup", "ctrl+u":
			m.move(-m.Height)
		case "pgdown", "ctrl+d":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Entries))
		case "end", "G":
			m.move(len(m.Entries))
		case "enter":
			if len(m.Entries) > 0 {
				e := m.Entries[m.Cursor]
				m.Selected = &e
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// move shifts the cursor by delta, clamped to the list, and scrolls the
// window so the cursor stays visible.
func (m *EntryListModel) move(delta int) {
	if len(m.Entries) == 0 {
		m.Cursor, m.Offset = 0, 0
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Entries)-1)
	switch {
	case m.Cursor < m.Offset:
		m.Offset = m.Cursor
	case m.Cursor >= m.Offset+m.Height:
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m EntryListModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n",
		StyleTitle.Render("Archived Plots"),
		StyleDim.Render("↑/↓ move  pgup/pgdn page  ⏎ regenerate  q quit"))

	end := min(m.Offset+m.Height, len(m.Entries))
	rows := make([][]string, 0, end-m.Offset)
	for i, e := range m.Entries[m.Offset:end] {
		marker := " "
		if m.Offset+i == m.Cursor {
			marker = "▸"
		}
		rows = append(rows, []string{marker, shortSeed(e.Seed), orDash(e.Palette), strconv.Itoa(e.Leaves), formatRelativeTime(e.CreatedAt)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("", "Seed", "Palette", "Shards", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return pickerHeaderStyle
			case m.Offset+row == m.Cursor:
				return pickerCursorStyle
			case col == 4:
				return StyleDim
			}
			return lipgloss.NewStyle()
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if len(m.Entries) == 0 {
		b.WriteString(StyleDim.Render("  nothing archived yet"))
		return b.String()
	}
	e := m.Entries[m.Cursor]
	fmt.Fprintf(&b, "%s\n%s\n\n%s",
		pickerSeedStyle.Render("  "+e.Seed),
		StyleDim.Render(fmt.Sprintf("  %g × %g mm · depth %d · %d strokes", e.Width, e.Height, e.MaxDepth, e.Routes)),
		StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))
	return b.String()
}

// formatRelativeTime renders t as "5m ago" within a week and as a date
// after that.
func formatRelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m ago"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d.Hours())) + "h ago"
	case d < 7*24*time.Hour:
		return strconv.Itoa(int(d.Hours()/24)) + "d ago"
	}
	return t.Format("Jan 2, 2006")
}
