package kimai

import (
	"strings"
	"time"
)

// kimaiTimestampLayout is the ISO 8601 variant Kimai emits ("2024-01-15T09:00:00+0100").
const kimaiTimestampLayout = "2006-01-02T15:04:05-0700"

// localDateTimeLayout is the HTML5 local datetime format Kimai expects in
// query parameters and request bodies.
const localDateTimeLayout = "2006-01-02T15:04:05"

// Customer mirrors an entry of GET /api/customers.
type Customer struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

// Project mirrors an entry of GET /api/projects.
type Project struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Customer    int    `json:"customer"`
	ParentTitle string `json:"parentTitle"`
	Visible     bool   `json:"visible"`
}

// Activity mirrors an entry of GET /api/activities.
type Activity struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Project     *int   `json:"project"`
	ParentTitle string `json:"parentTitle"`
	Visible     bool   `json:"visible"`
}

// Timesheet is the collection form of a timesheet record where relations
// are plain ids.
type Timesheet struct {
	ID       int     `json:"id"`
	Begin    string  `json:"begin"`
	End      *string `json:"end"`
	Duration int     `json:"duration"` // seconds
	Project  int     `json:"project"`
	Activity int     `json:"activity"`
}

// Running reports whether the record has no end yet.
func (t Timesheet) Running() bool {
	return t.End == nil || strings.TrimSpace(*t.End) == ""
}

// ParsedBegin returns the begin timestamp or the zero time.
func (t Timesheet) ParsedBegin() time.Time {
	return parseTime(t.Begin)
}

// ActiveTimesheet is the expanded form returned by GET /api/timesheets/active.
type ActiveTimesheet struct {
	ID       int              `json:"id"`
	Begin    string           `json:"begin"`
	Activity ActivityRef      `json:"activity"`
	Project  ProjectWithOwner `json:"project"`
}

// ParsedBegin returns the begin timestamp or the zero time.
func (a ActiveTimesheet) ParsedBegin() time.Time {
	return parseTime(a.Begin)
}

// ActivityRef is the nested activity of an expanded timesheet.
type ActivityRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ProjectWithOwner is the nested project of an expanded timesheet.
type ProjectWithOwner struct {
	ID       int         `json:"id"`
	Name     string      `json:"name"`
	Customer CustomerRef `json:"customer"`
}

// CustomerRef is the nested customer of an expanded project.
type CustomerRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// startRequest is the body of POST /api/timesheets.
type startRequest struct {
	Project  int    `json:"project"`
	Activity int    `json:"activity"`
	Begin    string `json:"begin"`
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{kimaiTimestampLayout, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(localDateTimeLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
