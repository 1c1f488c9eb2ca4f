package page

import (
	"context"
	"fmt"
	"time"

	"github.com/five82/kimaideck/internal/kimai"
)

// CustomerList shows every customer that owns at least one project.
type CustomerList struct {
	pager[kimai.Customer]
}

// NewCustomerList lists customers and projects from the server.
func NewCustomerList(ctx context.Context, deps Deps) (*CustomerList, error) {
	customers, err := deps.API.Customers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	projects, err := deps.API.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	l := &CustomerList{}
	if err := l.init(deps, customersWithProjects(customers, projects), customerName); err != nil {
		return nil, err
	}
	return l, nil
}

// customersWithProjects keeps customers referenced by a project, by id or,
// when the project carries no customer id, by its parent title.
func customersWithProjects(customers []kimai.Customer, projects []kimai.Project) []kimai.Customer {
	ids := make(map[int]bool, len(projects))
	names := make(map[string]bool)
	for _, p := range projects {
		if p.Customer != 0 {
			ids[p.Customer] = true
			continue
		}
		if p.ParentTitle != "" {
			names[p.ParentTitle] = true
		}
	}

	kept := make([]kimai.Customer, 0, len(customers))
	for _, c := range customers {
		if ids[c.ID] || names[c.Name] {
			kept = append(kept, c)
		}
	}
	return kept
}

func customerName(c kimai.Customer) string { return c.Name }

func (l *CustomerList) Name() string                        { return "customers" }
func (l *CustomerList) FetchData(ctx context.Context) error { return nil }
func (l *CustomerList) Render(s Surface) error              { return l.render(s) }
func (l *CustomerList) Cadence() Cadence                    { return DefaultCadence }

func (l *CustomerList) OnKeyPress(ctx context.Context, key int, held time.Duration) (Result, error) {
	return l.onKeyPress(ctx, key, held, l.open)
}

func (l *CustomerList) open(ctx context.Context, c kimai.Customer) (Result, error) {
	next, err := NewProjectList(ctx, l.deps, c)
	if err != nil {
		return Result{}, err
	}
	return SwitchTo(next), nil
}

// ProjectList shows the projects of one customer.
type ProjectList struct {
	pager[kimai.Project]
	customer kimai.Customer
}

// NewProjectList lists the projects of customer.
func NewProjectList(ctx context.Context, deps Deps, customer kimai.Customer) (*ProjectList, error) {
	projects, err := deps.API.ProjectsOf(ctx, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("list projects of customer %d: %w", customer.ID, err)
	}
	l := &ProjectList{customer: customer}
	if err := l.init(deps, projects, projectName); err != nil {
		return nil, err
	}
	return l, nil
}

func projectName(p kimai.Project) string { return p.Name }

// Customer is the owner of the listed projects.
func (l *ProjectList) Customer() kimai.Customer { return l.customer }

func (l *ProjectList) Name() string                        { return "projects" }
func (l *ProjectList) FetchData(ctx context.Context) error { return nil }
func (l *ProjectList) Render(s Surface) error              { return l.render(s) }
func (l *ProjectList) Cadence() Cadence                    { return DefaultCadence }

func (l *ProjectList) OnKeyPress(ctx context.Context, key int, held time.Duration) (Result, error) {
	return l.onKeyPress(ctx, key, held, l.open)
}

func (l *ProjectList) open(ctx context.Context, p kimai.Project) (Result, error) {
	next, err := NewActivityList(ctx, l.deps, p)
	if err != nil {
		return Result{}, err
	}
	return SwitchTo(next), nil
}

// ActivityList shows the activities of one project. Pressing an activity
// starts tracking it.
type ActivityList struct {
	pager[kimai.Activity]
	project kimai.Project
}

// NewActivityList lists the activities of project.
func NewActivityList(ctx context.Context, deps Deps, project kimai.Project) (*ActivityList, error) {
	activities, err := deps.API.ActivitiesOf(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("list activities of project %d: %w", project.ID, err)
	}
	l := &ActivityList{project: project}
	if err := l.init(deps, activities, activityName); err != nil {
		return nil, err
	}
	return l, nil
}

func activityName(a kimai.Activity) string { return a.Name }

// Project is the project tracking will be started for.
func (l *ActivityList) Project() kimai.Project { return l.project }

func (l *ActivityList) Name() string                        { return "activities" }
func (l *ActivityList) FetchData(ctx context.Context) error { return nil }
func (l *ActivityList) Render(s Surface) error              { return l.render(s) }
func (l *ActivityList) Cadence() Cadence                    { return DefaultCadence }

func (l *ActivityList) OnKeyPress(ctx context.Context, key int, held time.Duration) (Result, error) {
	return l.onKeyPress(ctx, key, held, l.start)
}

func (l *ActivityList) start(ctx context.Context, a kimai.Activity) (Result, error) {
	ts, err := l.deps.API.StartTimesheet(ctx, l.project.ID, a.ID)
	if err != nil {
		return Result{}, fmt.Errorf("start %s / %s: %w", l.project.Name, a.Name, err)
	}
	l.deps.logger().Info("tracking started",
		"timesheet", ts.ID,
		"project", l.project.Name,
		"activity", a.Name,
	)
	return SwitchTo(NewDashboard(l.deps)), nil
}

var (
	_ Page = (*CustomerList)(nil)
	_ Page = (*ProjectList)(nil)
	_ Page = (*ActivityList)(nil)
	_ Page = (*Dashboard)(nil)
)
