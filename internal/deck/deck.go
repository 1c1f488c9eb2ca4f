// Package deck defines the boundary to the physical tile device.
//
// A device is a grid of keys, each with its own small image. The rest of
// the program only needs the grid size, a way to set or blank a key image
// and a stream of key edge events; drivers live in sub-packages.
package deck

import (
	"context"
	"errors"
	"fmt"
	"image"
)

var (
	// ErrNoDevice is returned by enumerators when nothing is connected.
	ErrNoDevice = errors.New("no device connected")
	// ErrClosed is returned when a closed device is used.
	ErrClosed = errors.New("device closed")
)

// KeyEvent is a single key edge reported by a device.
type KeyEvent struct {
	Key     int
	Pressed bool
}

// Device is a grid of image keys.
type Device interface {
	Name() string
	Rows() int
	Cols() int
	// ImageSize is the pixel size of one key image.
	ImageSize() image.Point

	Open() error
	// Reset blanks every key.
	Reset() error
	Close() error

	// SetKeyImage shows img on key index; a nil img blanks the key.
	SetKeyImage(index int, img image.Image) error
	// SetKeyCallback registers the receiver of key edges. Drivers call it
	// from their own goroutine.
	SetKeyCallback(fn func(KeyEvent))
}

// Enumerator discovers connected devices.
type Enumerator interface {
	Enumerate(ctx context.Context) ([]Device, error)
}

// TileCount is the number of keys on d.
func TileCount(d Device) int {
	return d.Rows() * d.Cols()
}

// CheckIndex validates a key index against the grid of d.
func CheckIndex(d Device, index int) error {
	if index < 0 || index >= TileCount(d) {
		return fmt.Errorf("key %d out of range [0,%d)", index, TileCount(d))
	}
	return nil
}
