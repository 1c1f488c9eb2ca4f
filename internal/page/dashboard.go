package page

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/five82/kimaideck/internal/kimai"
	"github.com/five82/kimaideck/internal/render"
)

// IdleWarningAfter is how long the dashboard may sit idle before the start
// key begins to flash.
const IdleWarningAfter = 5 * time.Minute

var (
	activeCadence = Cadence{FetchesPerMinute: 2, FramesPerMinute: 2}
	idleCadence   = Cadence{FetchesPerMinute: 2, FramesPerMinute: 60}
)

// Dashboard shows today's total and the running timesheet, if any. The
// last key stops tracking or begins the start flow.
type Dashboard struct {
	deps    Deps
	created time.Time

	mu     sync.Mutex
	active *kimai.ActiveTimesheet
	today  []kimai.Timesheet
	frames int
}

// NewDashboard returns a dashboard with no data yet; the manager fetches
// on the next tick.
func NewDashboard(deps Deps) *Dashboard {
	return &Dashboard{deps: deps, created: deps.now()}
}

func (d *Dashboard) Name() string { return "dashboard" }

func (d *Dashboard) Cadence() Cadence {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active != nil {
		return activeCadence
	}
	return idleCadence
}

// Active returns the running timesheet seen by the last fetch.
func (d *Dashboard) Active() *kimai.ActiveTimesheet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

func (d *Dashboard) FetchData(ctx context.Context) error {
	active, err := d.deps.API.ActiveTimesheet(ctx)
	if err != nil {
		return fmt.Errorf("fetch active timesheet: %w", err)
	}
	today, err := d.deps.API.TimesheetsSince(ctx, startOfDay(d.deps.now(), d.deps.location()))
	if err != nil {
		return fmt.Errorf("fetch today's timesheets: %w", err)
	}

	d.mu.Lock()
	d.active = active
	d.today = today
	d.mu.Unlock()
	return nil
}

type tile struct {
	text string
	icon render.Icon
}

func (d *Dashboard) Render(s Surface) error {
	d.mu.Lock()
	d.frames++
	frame := d.frames
	active := d.active
	total := finishedMinutes(d.today)
	d.mu.Unlock()

	now := d.deps.now()
	if active == nil {
		icon := render.IconStart
		if flashing(d.created, now, frame) {
			icon = render.IconStartWarning
		}
		return drawTrailing(s, []tile{
			{text: formatMinutes(total)},
			{icon: icon},
		})
	}

	elapsed := elapsedMinutes(active.ParsedBegin(), now)
	return drawTrailing(s, []tile{
		{text: formatMinutes(total + elapsed)},
		{text: formatMinutes(elapsed)},
		{text: active.Activity.Name},
		{text: active.Project.Customer.Name},
		{text: active.Project.Name},
		{icon: render.IconStop},
	})
}

func (d *Dashboard) OnKeyPress(ctx context.Context, key int, held time.Duration) (Result, error) {
	if key != d.deps.Tiles-1 {
		return Result{}, nil
	}

	active, err := d.deps.API.ActiveTimesheet(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch active timesheet: %w", err)
	}
	if active != nil {
		if _, err := d.deps.API.StopTimesheet(ctx, active.ID); err != nil {
			return Result{}, fmt.Errorf("stop timesheet %d: %w", active.ID, err)
		}
		d.deps.logger().Info("tracking stopped", "timesheet", active.ID, "project", active.Project.Name)
		return Result{Action: ActionReload}, nil
	}

	next, err := NewCustomerList(ctx, d.deps)
	if err != nil {
		return Result{}, err
	}
	return SwitchTo(next), nil
}

// drawTrailing puts tiles on the last keys of the surface and clears the
// rest. Tiles that do not fit on a small grid are dropped from the front.
func drawTrailing(s Surface, tiles []tile) error {
	n := s.TileCount()
	first := n - len(tiles)
	for i := 0; i < first; i++ {
		if err := s.Clear(i); err != nil {
			return err
		}
	}
	for j, t := range tiles {
		index := first + j
		if index < 0 {
			continue
		}
		var err error
		if t.icon != "" {
			err = s.Icon(index, t.icon)
		} else {
			err = s.Text(index, t.text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// finishedMinutes sums the durations of completed timesheets in whole
// minutes. Running entries are covered by the elapsed time instead.
func finishedMinutes(sheets []kimai.Timesheet) int {
	seconds := 0
	for _, ts := range sheets {
		if ts.Running() {
			continue
		}
		seconds += ts.Duration
	}
	return seconds / 60
}

func elapsedMinutes(begin, now time.Time) int {
	if begin.IsZero() || now.Before(begin) {
		return 0
	}
	return int(now.Sub(begin) / time.Minute)
}

// formatMinutes renders minutes as HH:MM.
func formatMinutes(minutes int) string {
	minutes = max(minutes, 0)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// flashing reports whether the warning start icon is shown on this frame.
func flashing(created, now time.Time, frame int) bool {
	return !now.Before(created.Add(IdleWarningAfter)) && frame%2 == 0
}

func startOfDay(now time.Time, loc *time.Location) time.Time {
	y, m, day := now.In(loc).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}
