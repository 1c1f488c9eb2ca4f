// Package app is the composition root of kimaideck.
//
// Run loads the configuration, sets up logging and starts, under one
// errgroup:
//
//   - the terminal simulator when the terminal driver is selected,
//   - the preview HTTP server when preview.listen is set,
//   - a watcher that reloads the configuration file when it changes,
//   - the device sessions.
//
// # Sessions
//
// A Supervisor owns the device lifecycle. It polls its enumerator every
// five seconds until a device shows up, opens the first one and runs a
// manager.Manager on it. When the session ends with an error the device is
// reset and closed, the failure is recorded in the state store and
// discovery starts over after a backoff that doubles per consecutive
// failure, up to one minute. Cancelling the context resets and closes the
// device and returns nil.
//
// # Configuration reloads
//
// A valid change to the configuration file restarts the device session
// with the new settings. Invalid edits are logged and ignored. The driver,
// the terminal grid, logging and the preview address stay as they were at
// startup.
//
// # Error Handling
//
// Only startup problems are returned from Run: an unreadable or invalid
// configuration, a log file that cannot be opened, or a terminal that
// cannot be driven. Remote and device failures end the current session
// and are retried.
package app
