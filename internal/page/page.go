package page

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/kimaideck/internal/kimai"
	"github.com/five82/kimaideck/internal/render"
)

// Page is one screen of the deck: what the keys show, how presses are
// interpreted and how often data is refreshed.
type Page interface {
	// Name identifies the page in logs and status snapshots.
	Name() string
	// FetchData refreshes page-local state from the server.
	FetchData(ctx context.Context) error
	// Render redraws every key. Keys the page does not use are cleared.
	Render(s Surface) error
	// OnKeyPress decides what a completed press means. It never replaces
	// the current page itself; the manager applies the returned Result.
	OnKeyPress(ctx context.Context, key int, held time.Duration) (Result, error)
	Cadence() Cadence
}

// Surface is the drawing target handed to Render.
type Surface interface {
	TileCount() int
	Clear(index int) error
	Text(index int, text string) error
	Icon(index int, icon render.Icon) error
}

// Action tells the manager what to do after a key press.
type Action int

const (
	ActionNone Action = iota
	ActionRender
	ActionReload
	ActionSwitch
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionRender:
		return "render"
	case ActionReload:
		return "reload"
	case ActionSwitch:
		return "switch"
	default:
		return "unknown"
	}
}

// Result is the outcome of OnKeyPress. Next is set only for ActionSwitch.
type Result struct {
	Action Action
	Next   Page
}

// SwitchTo returns a result replacing the current page with next.
func SwitchTo(next Page) Result {
	return Result{Action: ActionSwitch, Next: next}
}

// Cadence is how often a page wants fresh data and new frames, per minute.
type Cadence struct {
	FetchesPerMinute int
	FramesPerMinute  int
}

// DefaultCadence applies to pages with nothing to animate.
var DefaultCadence = Cadence{FetchesPerMinute: 2, FramesPerMinute: 2}

// FetchInterval is the minimum time between two fetches.
func (c Cadence) FetchInterval() time.Duration {
	return perMinute(c.FetchesPerMinute)
}

// FrameInterval is the advisory time between two frames.
func (c Cadence) FrameInterval() time.Duration {
	return perMinute(c.FramesPerMinute)
}

func perMinute(n int) time.Duration {
	if n <= 0 {
		n = 2
	}
	return time.Minute / time.Duration(n)
}

// Deps carries what every page needs to talk to the server and lay out keys.
type Deps struct {
	API kimai.API
	// Tiles is the number of keys on the device.
	Tiles    int
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.Local
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
