package termdeck

import "github.com/charmbracelet/lipgloss"

// theme holds the few colours the simulator uses.
type theme struct {
	Text   string
	Muted  string
	Accent string
	Danger string
	Border string
}

var defaultTheme = theme{
	Text:   "#f8f8f2",
	Muted:  "#6272a4",
	Accent: "#50fa7b",
	Danger: "#ff5555",
	Border: "#44475a",
}

type styles struct {
	Title      lipgloss.Style
	Muted      lipgloss.Style
	Danger     lipgloss.Style
	Tile       lipgloss.Style
	TilePushed lipgloss.Style
	Label      lipgloss.Style
}

func (t theme) styles() styles {
	return styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),
		Danger: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),
		Tile: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)),
		TilePushed: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color(t.Accent)),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)).
			Align(lipgloss.Center),
	}
}
