package termdeck

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// keyMap defines the keyboard bindings of the simulator.
type keyMap struct {
	Tap  key.Binding
	Hold key.Binding
	Help key.Binding
	Quit key.Binding

	taps  []key.Binding
	holds []key.Binding
}

func newKeyMap(tiles int) keyMap {
	labels := keyLabels[:tiles]
	km := keyMap{
		Tap: key.NewBinding(
			key.WithKeys(strings.Split(labels, "")...),
			key.WithHelp(rangeHelp(labels, ""), "Press key"),
		),
		Hold: key.NewBinding(
			key.WithKeys(prefixed("alt+", labels)...),
			key.WithHelp(rangeHelp(labels, "alt+"), "Hold key"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("ctrl+c/esc", "Quit"),
		),
	}
	for _, r := range labels {
		km.taps = append(km.taps, key.NewBinding(key.WithKeys(string(r))))
		km.holds = append(km.holds, key.NewBinding(key.WithKeys("alt+"+string(r))))
	}
	return km
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tap, k.Hold, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tap, k.Hold},
		{k.Help, k.Quit},
	}
}

func prefixed(prefix, labels string) []string {
	out := make([]string, 0, len(labels))
	for _, r := range labels {
		out = append(out, prefix+string(r))
	}
	return out
}

func rangeHelp(labels, prefix string) string {
	if len(labels) == 1 {
		return prefix + labels
	}
	return prefix + labels[:1] + "…" + labels[len(labels)-1:]
}
