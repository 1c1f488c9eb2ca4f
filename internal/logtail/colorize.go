package logtail

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette styles the parts of a log line.
type Palette struct {
	Time  lipgloss.Style
	Info  lipgloss.Style
	Warn  lipgloss.Style
	Error lipgloss.Style
	Debug lipgloss.Style
	Attrs lipgloss.Style
}

// DefaultPalette suits dark terminal backgrounds.
func DefaultPalette() Palette {
	level := func(hex string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Bold(true)
	}
	return Palette{
		Time:  lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
		Info:  level("#5FD75F"),
		Warn:  level("#FFD700"),
		Error: level("#FF6B6B"),
		Debug: level("#87CEEB"),
		Attrs: lipgloss.NewStyle().Foreground(lipgloss.Color("#87AFFF")),
	}
}

// ColorizeLine renders a slog text line as "15:04:05 LEVEL message attrs".
// Lines in any other format are returned unchanged.
func (p Palette) ColorizeLine(line string) string {
	e, ok := Parse(line)
	if !ok {
		return line
	}

	parts := []string{p.Time.Render(clock(e.Time)), p.level(e.Level).Render(e.Level)}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if attrs := strings.TrimSpace(e.Attrs); attrs != "" {
		parts = append(parts, p.Attrs.Render(attrs))
	}
	return strings.Join(parts, " ")
}

// ColorizeLines applies ColorizeLine to every line.
func (p Palette) ColorizeLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = p.ColorizeLine(line)
	}
	return out
}

func (p Palette) level(level string) lipgloss.Style {
	switch {
	case strings.HasPrefix(level, "ERROR"):
		return p.Error
	case strings.HasPrefix(level, "WARN"):
		return p.Warn
	case strings.HasPrefix(level, "DEBUG"):
		return p.Debug
	default:
		return p.Info
	}
}

// clock trims an RFC 3339 timestamp to its time of day.
func clock(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 && len(ts) >= i+9 {
		return ts[i+1 : i+9]
	}
	return ts
}
