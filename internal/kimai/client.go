package kimai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// API is the set of Kimai operations the deck pages rely on.
// It is implemented by *Client and faked in tests.
type API interface {
	ActiveTimesheet(ctx context.Context) (*ActiveTimesheet, error)
	TimesheetsSince(ctx context.Context, since time.Time) ([]Timesheet, error)
	StartTimesheet(ctx context.Context, projectID, activityID int) (*Timesheet, error)
	StopTimesheet(ctx context.Context, id int) (*Timesheet, error)
	Customers(ctx context.Context) ([]Customer, error)
	Projects(ctx context.Context) ([]Project, error)
	ProjectsOf(ctx context.Context, customerID int) ([]Project, error)
	ActivitiesOf(ctx context.Context, projectID int) ([]Activity, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the Kimai JSON API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	user      string
	token     string
	loc       *time.Location
	now       func() time.Time
}

const (
	defaultUserAgent = "kimaideck/0.1"
	requestTimeout   = 10 * time.Second
	timesheetPage    = 250
)

// Options configure a Client.
type Options struct {
	URL      string
	User     string
	Token    string
	Location *time.Location // used for "begin" values; nil means time.Local
}

// StatusError is returned when the API answers with a non-success status.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// NewClient builds a Client for the API rooted at opts.URL (for example
// "https://kimai.example.com/api/").
func NewClient(opts Options) (*Client, error) {
	base, err := ParseBaseURL(opts.URL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.User) == "" || strings.TrimSpace(opts.Token) == "" {
		return nil, fmt.Errorf("api user and token are required")
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		user:      opts.User,
		token:     opts.Token,
		loc:       loc,
		now:       time.Now,
	}, nil
}

// ActiveTimesheet returns the running timesheet of the user, or nil when
// nothing is being tracked.
func (c *Client) ActiveTimesheet(ctx context.Context) (*ActiveTimesheet, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []ActiveTimesheet
	if err := c.do(ctx, http.MethodGet, "timesheets/active", nil, &payload); err != nil {
		return nil, fmt.Errorf("get active timesheet: %w", err)
	}
	if len(payload) == 0 {
		return nil, nil
	}
	return &payload[0], nil
}

// TimesheetsSince lists the user's timesheets beginning at or after since,
// oldest first.
func (c *Client) TimesheetsSince(ctx context.Context, since time.Time) ([]Timesheet, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("begin", since.In(c.loc).Format(localDateTimeLayout))
	values.Set("orderBy", "begin")
	values.Set("order", "ASC")
	values.Set("size", strconv.Itoa(timesheetPage))
	rel := &url.URL{Path: "timesheets", RawQuery: values.Encode()}
	var payload []Timesheet
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, fmt.Errorf("list timesheets: %w", err)
	}
	return payload, nil
}

// StartTimesheet starts tracking the given project/activity pair now.
func (c *Client) StartTimesheet(ctx context.Context, projectID, activityID int) (*Timesheet, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	body := startRequest{
		Project:  projectID,
		Activity: activityID,
		Begin:    c.now().In(c.loc).Format(localDateTimeLayout),
	}
	var payload Timesheet
	if err := c.do(ctx, http.MethodPost, "timesheets", body, &payload); err != nil {
		return nil, fmt.Errorf("start timesheet: %w", err)
	}
	return &payload, nil
}

// StopTimesheet stops the running timesheet with the given id.
func (c *Client) StopTimesheet(ctx context.Context, id int) (*Timesheet, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if id <= 0 {
		return nil, fmt.Errorf("timesheet id required")
	}
	var payload Timesheet
	path := "timesheets/" + strconv.Itoa(id) + "/stop"
	if err := c.do(ctx, http.MethodPatch, path, nil, &payload); err != nil {
		return nil, fmt.Errorf("stop timesheet %d: %w", id, err)
	}
	return &payload, nil
}

// Customers lists all visible customers.
func (c *Client) Customers(ctx context.Context) ([]Customer, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []Customer
	if err := c.do(ctx, http.MethodGet, "customers", nil, &payload); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return payload, nil
}

// Projects lists all visible projects across customers.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []Project
	if err := c.do(ctx, http.MethodGet, "projects", nil, &payload); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return payload, nil
}

// ProjectsOf lists the projects of one customer.
func (c *Client) ProjectsOf(ctx context.Context, customerID int) ([]Project, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("customer", strconv.Itoa(customerID))
	rel := &url.URL{Path: "projects", RawQuery: values.Encode()}
	var payload []Project
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, fmt.Errorf("list projects of customer %d: %w", customerID, err)
	}
	return payload, nil
}

// ActivitiesOf lists the activities bookable on one project.
func (c *Client) ActivitiesOf(ctx context.Context, projectID int) ([]Activity, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("project", strconv.Itoa(projectID))
	rel := &url.URL{Path: "activities", RawQuery: values.Encode()}
	var payload []Activity
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, fmt.Errorf("list activities of project %d: %w", projectID, err)
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-AUTH-USER", c.user)
	req.Header.Set("X-AUTH-TOKEN", c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &StatusError{Path: rel.Path, Code: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ParseBaseURL normalises the configured API root so relative endpoint
// paths resolve beneath it. A missing scheme defaults to https.
func ParseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("api url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("api url %q has no host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
