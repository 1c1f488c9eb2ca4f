// Package kimai provides an HTTP client for the Kimai time-tracking API.
//
// # Overview
//
// The deck only needs a small, typed slice of the Kimai API: reading the
// running timesheet and today's records, starting and stopping tracking, and
// listing customers, projects and activities for the selection pages.
//
//   - client.go: HTTP client, request/response handling and the API interface
//   - types.go: data structures mirroring the Kimai JSON schema
//
// # Client Usage
//
//	client, err := kimai.NewClient(kimai.Options{
//		URL:   "https://kimai.example.com/api/",
//		User:  "susan",
//		Token: "api-token",
//	})
//	if err != nil {
//		return err
//	}
//	active, err := client.ActiveTimesheet(ctx)
//
// # Endpoints
//
//   - GET   timesheets/active          running timesheet (expanded relations)
//   - GET   timesheets?begin=…         today's records, oldest first
//   - POST  timesheets                 start tracking {project, activity, begin}
//   - PATCH timesheets/{id}/stop       stop tracking
//   - GET   customers, projects, projects?customer=…, activities?project=…
//
// Paths are resolved relative to the configured API root, so the root must
// include Kimai's "/api/" prefix.
//
// # Request Handling
//
// Every request carries the X-AUTH-USER and X-AUTH-TOKEN headers, an
// Accept: application/json header and a User-Agent. Requests share a fixed
// 10 second timeout and honour the caller's context.
//
// # Error Handling
//
// Responses with status >= 400 become *StatusError. Transport and decode
// failures are wrapped with the operation that failed. Nothing is retried:
// callers decide what a failure means (the deck resets the device and starts
// over).
package kimai
