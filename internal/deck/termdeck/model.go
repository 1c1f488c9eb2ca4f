package termdeck

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/kimaideck/internal/deck"
	"github.com/five82/kimaideck/internal/logtail"
	"github.com/five82/kimaideck/internal/state"
)

const (
	defaultTap     = 100 * time.Millisecond
	defaultHold    = 2500 * time.Millisecond
	defaultRefresh = 100 * time.Millisecond

	minTileCols = 8
	maxTileCols = 36

	logLines = 4
)

// Options configure the terminal simulator.
type Options struct {
	Device  *Device
	Store   *state.Store
	Tap     time.Duration // key down to key up for a plain key
	Hold    time.Duration // key down to key up for alt+key
	Refresh time.Duration // how often the store is redrawn
	// LogPath is tailed below the grid when set.
	LogPath string
	// OnQuit is called when the user quits from the keyboard.
	OnQuit func()
}

// Model is the Bubble Tea model of the simulator.
type Model struct {
	dev     *Device
	store   *state.Store
	keys    keyMap
	help    help.Model
	styles  styles
	tap     time.Duration
	hold    time.Duration
	refresh time.Duration
	onQuit  func()
	logPath string
	palette logtail.Palette

	width    int
	height   int
	snapshot state.Snapshot
	logTail  []string
	pushed   map[int]bool
}

// NewModel builds the simulator model for opts.Device.
func NewModel(opts Options) Model {
	tap := opts.Tap
	if tap <= 0 {
		tap = defaultTap
	}
	hold := opts.Hold
	if hold <= 0 {
		hold = defaultHold
	}
	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = defaultRefresh
	}
	return Model{
		dev:     opts.Device,
		store:   opts.Store,
		keys:    newKeyMap(deck.TileCount(opts.Device)),
		help:    help.New(),
		styles:  defaultTheme.styles(),
		tap:     tap,
		hold:    hold,
		refresh: refresh,
		onQuit:  opts.OnQuit,
		logPath: opts.LogPath,
		palette: logtail.DefaultPalette(),
		pushed:  make(map[int]bool),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.refresh), fetchSnapshotCmd(m.store), fetchLogCmd(m.logPath))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		return m, tea.Batch(fetchSnapshotCmd(m.store), fetchLogCmd(m.logPath), tickCmd(m.refresh))

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case logMsg:
		m.logTail = []string(msg)
		return m, nil

	case releasedMsg:
		delete(m.pushed, int(msg))
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	for i, b := range m.keys.holds {
		if key.Matches(msg, b) {
			return m.push(i, m.hold)
		}
	}
	for i, b := range m.keys.taps {
		if key.Matches(msg, b) {
			return m.push(i, m.tap)
		}
	}
	return m, nil
}

// push simulates key i going down and coming back up after held. Repeats
// while the key is still down are dropped.
func (m Model) push(i int, held time.Duration) (tea.Model, tea.Cmd) {
	if m.pushed[i] {
		return m, nil
	}
	m.pushed[i] = true
	return m, pushCmd(m.dev, i, held)
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	if len(m.logTail) > 0 {
		b.WriteString(strings.Join(m.palette.ColorizeLines(m.logTail), "\n"))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderHeader() string {
	page := m.snapshot.Page
	if page == "" {
		page = "none"
	}
	return m.styles.Title.Render("kimaideck") + " " +
		m.styles.Muted.Render(fmt.Sprintf("%s · page %s", m.dev.Name(), page))
}

// tileCols picks a tile width that fits the terminal.
func (m Model) tileCols() int {
	cols := m.dev.Cols()
	if m.width <= 0 || cols <= 0 {
		return 16
	}
	// Two border columns per tile.
	w := m.width/cols - 2
	return max(minTileCols, min(maxTileCols, w))
}

func (m Model) renderGrid() string {
	cols, rows := m.dev.Cols(), m.dev.Rows()
	tileCols := m.tileCols()
	tileRows := max(1, tileCols/2)

	lines := make([]string, 0, rows)
	for r := 0; r < rows; r++ {
		cells := make([]string, 0, cols)
		for c := 0; c < cols; c++ {
			i := r*cols + c
			cells = append(cells, m.renderTile(i, tileCols, tileRows))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderTile(i, cols, rows int) string {
	art := tileArt(m.tile(i), cols, rows)
	label := m.styles.Label.Width(cols).Render(string(keyLabels[i]))
	body := strings.Join(append(art, label), "\n")

	style := m.styles.Tile
	if m.pushed[i] {
		style = m.styles.TilePushed
	}
	return style.Render(body)
}

func (m Model) tile(i int) image.Image {
	if i < 0 || i >= len(m.snapshot.Tiles) {
		return nil
	}
	return m.snapshot.Tiles[i]
}

func (m Model) renderStatus() string {
	s := m.snapshot
	parts := []string{
		"fetched " + ago(s.LastFetch),
		"rendered " + ago(s.LastRender),
	}
	line := m.styles.Muted.Render(strings.Join(parts, " · "))
	if s.LastError != nil {
		label := "last error"
		if s.IsDegraded() {
			label = fmt.Sprintf("%d failed sessions", s.ConsecutiveFailures)
		}
		line += "  " + m.styles.Danger.Render(label+": "+s.LastError.Error())
	}
	return line
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return time.Since(t).Truncate(time.Second).String() + " ago"
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type releasedMsg int

type logMsg []string

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// fetchLogCmd reads the end of the log file. Read errors show up as an
// empty tail.
func fetchLogCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, logLines)
		if err != nil {
			return logMsg(nil)
		}
		return logMsg(lines)
	}
}

// pushCmd sends key down, waits held, then sends key up. Bubble Tea runs
// commands on their own goroutines so the wait does not stall the UI.
func pushCmd(dev *Device, i int, held time.Duration) tea.Cmd {
	return func() tea.Msg {
		dev.emit(deck.KeyEvent{Key: i, Pressed: true})
		time.Sleep(held)
		dev.emit(deck.KeyEvent{Key: i, Pressed: false})
		return releasedMsg(i)
	}
}

// Run shows the simulator until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	if opts.Device == nil || opts.Store == nil {
		return errors.New("terminal deck needs a device and a store")
	}
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
