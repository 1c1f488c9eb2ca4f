package page

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/five82/kimaideck/internal/kimai"
)

func TestProjectList_OpensActivities(t *testing.T) {
	api := newFakeAPI()
	api.projects = []kimai.Project{
		{ID: 7, Name: "Website", Customer: 1},
		{ID: 8, Name: "Other", Customer: 2},
	}
	api.activities[7] = []kimai.Activity{{ID: 3, Name: "Development", Project: intPtr(7)}}
	clock := &fakeClock{now: dashboardNow}

	projects, err := NewProjectList(context.Background(), testDeps(api, 15, clock), kimai.Customer{ID: 1, Name: "ACME"})
	if err != nil {
		t.Fatalf("NewProjectList returned error: %v", err)
	}
	if got := projects.Elements(); len(got) != 1 || got[0].ID != 7 {
		t.Fatalf("projects = %+v, want only project 7", got)
	}

	res, err := projects.OnKeyPress(context.Background(), 0, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("OnKeyPress returned error: %v", err)
	}
	activities, ok := res.Next.(*ActivityList)
	if res.Action != ActionSwitch || !ok {
		t.Fatalf("result = %v/%T, want switch to *ActivityList", res.Action, res.Next)
	}
	if activities.Project().ID != 7 {
		t.Fatalf("activity list project = %d, want 7", activities.Project().ID)
	}
}

func TestActivityList_PressStartsTracking(t *testing.T) {
	api := newFakeAPI()
	api.activities[7] = []kimai.Activity{
		{ID: 3, Name: "Development"},
		{ID: 4, Name: "Meetings"},
	}
	clock := &fakeClock{now: dashboardNow}

	list, err := NewActivityList(context.Background(), testDeps(api, 15, clock), kimai.Project{ID: 7, Name: "Website"})
	if err != nil {
		t.Fatalf("NewActivityList returned error: %v", err)
	}
	res, err := list.OnKeyPress(context.Background(), 1, 150*time.Millisecond)
	if err != nil {
		t.Fatalf("OnKeyPress returned error: %v", err)
	}
	if res.Action != ActionSwitch {
		t.Fatalf("action = %v, want switch", res.Action)
	}
	if _, ok := res.Next.(*Dashboard); !ok {
		t.Fatalf("next page = %T, want *Dashboard", res.Next)
	}
	if len(api.started) != 1 || api.started[0] != (startCall{project: 7, activity: 4}) {
		t.Fatalf("started = %+v, want one start of 7/4", api.started)
	}
}

func TestActivityList_StartFailure(t *testing.T) {
	api := newFakeAPI()
	api.activities[7] = []kimai.Activity{{ID: 3, Name: "Development"}}
	clock := &fakeClock{now: dashboardNow}
	list, err := NewActivityList(context.Background(), testDeps(api, 15, clock), kimai.Project{ID: 7})
	if err != nil {
		t.Fatalf("NewActivityList returned error: %v", err)
	}

	api.err = errors.New("connection refused")
	if _, err := list.OnKeyPress(context.Background(), 0, time.Second); err == nil {
		t.Fatalf("OnKeyPress returned nil error, want start failure")
	}
}

func TestCustomerList_OpensProjects(t *testing.T) {
	api := newFakeAPI()
	api.customers = []kimai.Customer{{ID: 1, Name: "ACME"}, {ID: 2, Name: "Globex"}, {ID: 3, Name: "Dormant"}}
	api.projects = []kimai.Project{
		{ID: 7, Name: "Website", Customer: 1},
		{ID: 8, Name: "Billing", Customer: 2},
	}
	clock := &fakeClock{now: dashboardNow}

	customers, err := NewCustomerList(context.Background(), testDeps(api, 15, clock))
	if err != nil {
		t.Fatalf("NewCustomerList returned error: %v", err)
	}
	if got := customers.Elements(); len(got) != 2 {
		t.Fatalf("customers = %+v, want ACME and Globex", got)
	}

	res, err := customers.OnKeyPress(context.Background(), 1, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("OnKeyPress returned error: %v", err)
	}
	projects, ok := res.Next.(*ProjectList)
	if res.Action != ActionSwitch || !ok {
		t.Fatalf("result = %v/%T, want switch to *ProjectList", res.Action, res.Next)
	}
	if got := projects.Customer(); got.ID != 2 || got.Name != "Globex" {
		t.Fatalf("project list customer = %+v, want Globex", got)
	}
	if got := projects.Elements(); len(got) != 1 || got[0].ID != 8 {
		t.Fatalf("projects = %+v, want only project 8", got)
	}
}

func TestCustomerList_ConstructorFailure(t *testing.T) {
	api := newFakeAPI()
	api.err = errors.New("401")
	clock := &fakeClock{now: dashboardNow}
	if _, err := NewCustomerList(context.Background(), testDeps(api, 15, clock)); err == nil {
		t.Fatalf("NewCustomerList returned nil error")
	}
}

func TestCadenceIntervals(t *testing.T) {
	tests := []struct {
		cadence Cadence
		fetch   time.Duration
		frame   time.Duration
	}{
		{DefaultCadence, 30 * time.Second, 30 * time.Second},
		{Cadence{FetchesPerMinute: 2, FramesPerMinute: 60}, 30 * time.Second, time.Second},
		{Cadence{}, 30 * time.Second, 30 * time.Second},
	}
	for _, tt := range tests {
		if got := tt.cadence.FetchInterval(); got != tt.fetch {
			t.Fatalf("%+v FetchInterval = %v, want %v", tt.cadence, got, tt.fetch)
		}
		if got := tt.cadence.FrameInterval(); got != tt.frame {
			t.Fatalf("%+v FrameInterval = %v, want %v", tt.cadence, got, tt.frame)
		}
	}
}
