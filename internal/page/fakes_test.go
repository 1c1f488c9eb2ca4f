package page

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/five82/kimaideck/internal/kimai"
	"github.com/five82/kimaideck/internal/render"
)

type startCall struct {
	project  int
	activity int
}

type fakeAPI struct {
	mu sync.Mutex

	active     *kimai.ActiveTimesheet
	today      []kimai.Timesheet
	customers  []kimai.Customer
	projects   []kimai.Project
	activities map[int][]kimai.Activity
	err        error

	calls   map[string]int
	started []startCall
	stopped []int
	since   []time.Time
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string]int), activities: make(map[int][]kimai.Activity)}
}

func (f *fakeAPI) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.err
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) ActiveTimesheet(ctx context.Context) (*kimai.ActiveTimesheet, error) {
	if err := f.record("active"); err != nil {
		return nil, err
	}
	return f.active, nil
}

func (f *fakeAPI) TimesheetsSince(ctx context.Context, since time.Time) ([]kimai.Timesheet, error) {
	if err := f.record("since"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.since = append(f.since, since)
	f.mu.Unlock()
	return f.today, nil
}

func (f *fakeAPI) StartTimesheet(ctx context.Context, projectID, activityID int) (*kimai.Timesheet, error) {
	if err := f.record("start"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.started = append(f.started, startCall{project: projectID, activity: activityID})
	f.mu.Unlock()
	return &kimai.Timesheet{ID: 99, Project: projectID, Activity: activityID}, nil
}

func (f *fakeAPI) StopTimesheet(ctx context.Context, id int) (*kimai.Timesheet, error) {
	if err := f.record("stop"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.stopped = append(f.stopped, id)
	f.active = nil
	f.mu.Unlock()
	return &kimai.Timesheet{ID: id}, nil
}

func (f *fakeAPI) Customers(ctx context.Context) ([]kimai.Customer, error) {
	if err := f.record("customers"); err != nil {
		return nil, err
	}
	return f.customers, nil
}

func (f *fakeAPI) Projects(ctx context.Context) ([]kimai.Project, error) {
	if err := f.record("projects"); err != nil {
		return nil, err
	}
	return f.projects, nil
}

func (f *fakeAPI) ProjectsOf(ctx context.Context, customerID int) ([]kimai.Project, error) {
	if err := f.record("projectsOf"); err != nil {
		return nil, err
	}
	var out []kimai.Project
	for _, p := range f.projects {
		if p.Customer == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeAPI) ActivitiesOf(ctx context.Context, projectID int) ([]kimai.Activity, error) {
	if err := f.record("activitiesOf"); err != nil {
		return nil, err
	}
	return f.activities[projectID], nil
}

var _ kimai.API = (*fakeAPI)(nil)

// fakeSurface records the last thing drawn on each key as "text:…",
// "icon:…" or "clear".
type fakeSurface struct {
	tiles int
	keys  map[int]string
}

func newFakeSurface(tiles int) *fakeSurface {
	return &fakeSurface{tiles: tiles, keys: make(map[int]string)}
}

func (s *fakeSurface) TileCount() int { return s.tiles }

func (s *fakeSurface) check(index int) error {
	if index < 0 || index >= s.tiles {
		return fmt.Errorf("key %d out of range", index)
	}
	return nil
}

func (s *fakeSurface) Clear(index int) error {
	if err := s.check(index); err != nil {
		return err
	}
	s.keys[index] = "clear"
	return nil
}

func (s *fakeSurface) Text(index int, text string) error {
	if err := s.check(index); err != nil {
		return err
	}
	s.keys[index] = "text:" + text
	return nil
}

func (s *fakeSurface) Icon(index int, icon render.Icon) error {
	if err := s.check(index); err != nil {
		return err
	}
	s.keys[index] = "icon:" + string(icon)
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testDeps(api kimai.API, tiles int, clock *fakeClock) Deps {
	return Deps{
		API:      api,
		Tiles:    tiles,
		Location: time.UTC,
		Now:      clock.Now,
	}
}

func intPtr(v int) *int { return &v }
