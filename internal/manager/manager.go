package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/kimaideck/internal/deck"
	"github.com/five82/kimaideck/internal/page"
	"github.com/five82/kimaideck/internal/render"
	"github.com/five82/kimaideck/internal/state"
)

const defaultTick = time.Second

// Options configure a Manager.
type Options struct {
	Device deck.Device
	// Deps is handed to every page. Tiles is filled in from Device.
	Deps page.Deps
	// Surface draws on Device; nil builds a render.Surface.
	Surface page.Surface
	// Store receives page and refresh bookkeeping; optional.
	Store  *state.Store
	Tick   time.Duration // zero uses one second
	Now    func() time.Time
	Logger *slog.Logger
}

// Manager owns the current page of one open device. A refresh loop fetches
// and renders on a fixed tick while key events are dispatched from the
// driver's callback.
type Manager struct {
	dev     deck.Device
	surface page.Surface
	deps    page.Deps
	store   *state.Store
	tick    time.Duration
	now     func() time.Time
	logger  *slog.Logger

	// slotMu guards the current page together with its refresh stamps so a
	// switch is observed as one unit.
	slotMu     sync.Mutex
	current    page.Page
	lastFetch  time.Time
	lastRender time.Time
	generation uint64

	// renderMu serialises "read current page + render".
	renderMu sync.Mutex

	// keyMu serialises dispatches; it is never held by the refresh loop.
	keyMu sync.Mutex
	down  map[int]time.Time

	running atomic.Bool
	alive   atomic.Bool

	// dispatchMu orders dispatches.Add against shutdown.
	dispatchMu sync.Mutex
	dispatches sync.WaitGroup

	failMu  sync.Mutex
	failure error
	cancel  context.CancelFunc
}

// New prepares a manager for an opened device.
func New(opts Options) (*Manager, error) {
	if opts.Device == nil {
		return nil, errors.New("manager needs a device")
	}
	if opts.Deps.API == nil {
		return nil, errors.New("manager needs an API client")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = defaultTick
	}

	surface := opts.Surface
	if surface == nil {
		s, err := render.NewSurface(opts.Device)
		if err != nil {
			return nil, err
		}
		surface = s
	}

	deps := opts.Deps
	deps.Tiles = deck.TileCount(opts.Device)
	if deps.Logger == nil {
		deps.Logger = logger
	}
	if deps.Now == nil {
		deps.Now = now
	}

	return &Manager{
		dev:     opts.Device,
		surface: surface,
		deps:    deps,
		store:   opts.Store,
		tick:    tick,
		now:     now,
		logger:  logger.With("device", opts.Device.Name()),
		down:    make(map[int]time.Time),
	}, nil
}

// Current returns the page currently shown.
func (m *Manager) Current() page.Page {
	p, _ := m.slot()
	return p
}

// Run resets the device, shows the dashboard and serves the device until
// ctx ends or a fetch, render or dispatch fails. It returns the failure, or
// ctx.Err() on a clean stop. The refresh loop and any in-flight dispatch
// have finished when Run returns.
func (m *Manager) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return errors.New("manager already running")
	}

	if err := m.dev.Reset(); err != nil {
		return fmt.Errorf("reset device: %w", err)
	}
	if m.store != nil {
		m.store.Attach(m.dev.Name(), m.dev.Rows(), m.dev.Cols())
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	m.failMu.Lock()
	m.cancel = cancel
	m.failMu.Unlock()

	m.switchTo(page.NewDashboard(m.deps))
	m.alive.Store(true)
	m.dev.SetKeyCallback(func(ev deck.KeyEvent) {
		m.handleKey(runCtx, ev)
	})

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		m.refreshLoop(runCtx)
	}()

	<-runCtx.Done()

	m.dispatchMu.Lock()
	m.alive.Store(false)
	m.dispatchMu.Unlock()
	m.dev.SetKeyCallback(nil)
	<-loopDone
	m.dispatches.Wait()

	m.failMu.Lock()
	defer m.failMu.Unlock()
	if m.failure != nil {
		return m.failure
	}
	return ctx.Err()
}

// fail records the first error and stops Run. Errors arriving after the
// caller cancelled are shutdown noise and dropped.
func (m *Manager) fail(parent context.Context, err error) {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	if m.failure != nil || parent.Err() != nil {
		return
	}
	m.failure = err
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *Manager) slot() (page.Page, uint64) {
	m.slotMu.Lock()
	defer m.slotMu.Unlock()
	return m.current, m.generation
}

// switchTo installs next and forgets the refresh stamps of the previous
// page, so the next tick fetches and renders at once.
func (m *Manager) switchTo(next page.Page) {
	m.slotMu.Lock()
	prev := m.current
	m.current = next
	m.lastFetch = time.Time{}
	m.lastRender = time.Time{}
	m.generation++
	m.slotMu.Unlock()

	if m.store != nil {
		m.store.SetPage(next.Name())
	}
	if prev != nil {
		m.logger.Debug("page switched", "from", prev.Name(), "to", next.Name())
	}
}

// fetchDue returns the current page if its fetch interval has run out.
func (m *Manager) fetchDue(now time.Time) (page.Page, uint64, bool) {
	m.slotMu.Lock()
	defer m.slotMu.Unlock()
	if m.current == nil {
		return nil, m.generation, false
	}
	due := m.lastFetch.IsZero() || now.Sub(m.lastFetch) > m.current.Cadence().FetchInterval()
	return m.current, m.generation, due
}

// markFetched stamps a fetch unless the page was replaced meanwhile.
func (m *Manager) markFetched(gen uint64, at time.Time) {
	m.slotMu.Lock()
	if m.generation == gen {
		m.lastFetch = at
	}
	m.slotMu.Unlock()
	if m.store != nil {
		m.store.MarkFetch(at)
	}
}

func (m *Manager) fetch(ctx context.Context, p page.Page, gen uint64) error {
	at := m.now()
	if err := p.FetchData(ctx); err != nil {
		return fmt.Errorf("fetch %s: %w", p.Name(), err)
	}
	m.markFetched(gen, at)
	return nil
}

// render draws whatever page is current when the render lock is taken.
func (m *Manager) render() error {
	m.renderMu.Lock()
	defer m.renderMu.Unlock()

	p, gen := m.slot()
	if p == nil {
		return nil
	}
	if err := p.Render(m.surface); err != nil {
		return fmt.Errorf("render %s: %w", p.Name(), err)
	}

	at := m.now()
	m.slotMu.Lock()
	if m.generation == gen {
		m.lastRender = at
	}
	m.slotMu.Unlock()
	if m.store != nil {
		m.store.MarkRender(at)
	}
	return nil
}

func (m *Manager) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		if err := m.refresh(ctx); err != nil {
			m.fail(ctx, err)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// refresh is one tick: fetch if due, then render.
func (m *Manager) refresh(ctx context.Context) error {
	if !m.alive.Load() {
		return nil
	}
	p, gen, due := m.fetchDue(m.now())
	if due {
		if err := m.fetch(ctx, p, gen); err != nil {
			return err
		}
	}
	if !m.alive.Load() {
		return nil
	}
	return m.render()
}

func (m *Manager) beginDispatch() bool {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()
	if !m.alive.Load() {
		return false
	}
	m.dispatches.Add(1)
	return true
}

// handleKey turns key edges into timed presses and dispatches them.
func (m *Manager) handleKey(ctx context.Context, ev deck.KeyEvent) {
	if !m.beginDispatch() {
		return
	}
	defer m.dispatches.Done()

	m.keyMu.Lock()
	defer m.keyMu.Unlock()

	at := m.now()
	if ev.Pressed {
		m.down[ev.Key] = at
		return
	}
	pressed, ok := m.down[ev.Key]
	if !ok {
		m.logger.Warn("key released without press", "key", ev.Key)
		return
	}
	delete(m.down, ev.Key)

	if err := m.dispatch(ctx, ev.Key, at.Sub(pressed)); err != nil {
		m.fail(ctx, fmt.Errorf("key %d: %w", ev.Key, err))
	}
}

// dispatch applies the result of a press on the current page.
func (m *Manager) dispatch(ctx context.Context, key int, held time.Duration) error {
	p, gen := m.slot()
	if p == nil {
		return nil
	}
	res, err := p.OnKeyPress(ctx, key, held)
	if err != nil {
		return err
	}
	m.logger.Debug("key press",
		"page", p.Name(),
		"key", key,
		"held_ms", held.Milliseconds(),
		"action", res.Action.String(),
	)

	switch res.Action {
	case page.ActionNone:
		return nil
	case page.ActionRender:
		return m.render()
	case page.ActionReload:
		if err := m.fetch(ctx, p, gen); err != nil {
			return err
		}
		return m.render()
	case page.ActionSwitch:
		if res.Next == nil {
			return fmt.Errorf("%s returned a switch without a page", p.Name())
		}
		m.switchTo(res.Next)
		return m.render()
	default:
		return fmt.Errorf("%s returned unknown action %d", p.Name(), res.Action)
	}
}
