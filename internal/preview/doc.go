// Package preview serves the deck over HTTP: "/" is a small page that
// polls "/frame", a PNG of all key images laid out as the device grid, and
// "/status", the current page and session health as JSON.
//
// It is the only way to see key images when the evdev driver is used.
package preview
