// Package termdeck simulates a tile deck in the terminal.
//
// Device implements deck.Device by storing key images in a state.Store. The
// Bubble Tea model draws the store as a grid of half-block thumbnails and
// turns keyboard input into key edges: 1…0, q…p, a…l and z…m press the
// keys left to right, top to bottom. A plain key goes up again after a
// short tap; alt+key holds it long enough to count as a long press.
//
// Bubble Tea has no key release events, so both edges are synthesised.
package termdeck
