// Package evdeck drives a Linux evdev keypad as a tile deck.
//
// The keypad is located by its kernel name and grabbed exclusively. Each
// configured key code maps to one tile; presses and releases become
// deck.KeyEvents and autorepeat is dropped. A keypad has no screen, so key
// images are kept in a state.Store and shown by the preview server.
//
// A read error marks the device as lost and makes every further write
// fail, which ends the running session.
package evdeck
