// Package manager runs the pages on one open device.
//
// Two goroutines touch the current page: the refresh loop, which ticks
// every second, fetches when the page's cadence says so and renders on
// every tick, and the driver's key callback, which times presses from key
// down to key up and applies the page's Result.
//
// The current page and its last fetch and render times live behind one
// mutex and are replaced together, so a freshly switched page is fetched
// on the next tick. A second mutex serialises rendering. Neither is held
// while a page talks to the server.
//
// Any fetch, render or dispatch error ends Run with that error; restarting
// the device is left to the caller.
package manager
