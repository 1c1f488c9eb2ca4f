package termdeck

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/five82/kimaideck/internal/deck"
	"github.com/five82/kimaideck/internal/state"
)

// keyLabels maps tile index to the keyboard key that presses it.
const keyLabels = "1234567890qwertyuiopasdfghjklzxcvbnm"

// KeySize is the pixel size of a simulated key.
var KeySize = image.Pt(72, 72)

// Device is a tile grid shown in the terminal. Images are kept in the
// shared store, where the TUI and the preview server read them.
type Device struct {
	rows  int
	cols  int
	store *state.Store

	mu       sync.Mutex
	open     bool
	callback func(deck.KeyEvent)
}

// New returns a simulated deck of rows x cols keys backed by store.
func New(rows, cols int, store *state.Store) (*Device, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid grid %dx%d", rows, cols)
	}
	if rows*cols > len(keyLabels) {
		return nil, fmt.Errorf("terminal deck supports at most %d keys, got %d", len(keyLabels), rows*cols)
	}
	if store == nil {
		return nil, fmt.Errorf("terminal deck needs a store")
	}
	return &Device{rows: rows, cols: cols, store: store}, nil
}

func (d *Device) Name() string           { return fmt.Sprintf("terminal %dx%d", d.rows, d.cols) }
func (d *Device) Rows() int              { return d.rows }
func (d *Device) Cols() int              { return d.cols }
func (d *Device) ImageSize() image.Point { return KeySize }

func (d *Device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = true
	d.store.Attach(d.Name(), d.rows, d.cols)
	return nil
}

func (d *Device) Reset() error {
	if !d.isOpen() {
		return deck.ErrClosed
	}
	d.store.ClearTiles()
	return nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	d.callback = nil
	return nil
}

func (d *Device) SetKeyImage(index int, img image.Image) error {
	if !d.isOpen() {
		return deck.ErrClosed
	}
	if err := deck.CheckIndex(d, index); err != nil {
		return err
	}
	d.store.SetTile(index, img)
	return nil
}

func (d *Device) SetKeyCallback(fn func(deck.KeyEvent)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callback = fn
}

func (d *Device) isOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// emit delivers a key edge to the registered callback. The lock is released
// before the callback runs since dispatch may take a while.
func (d *Device) emit(ev deck.KeyEvent) {
	d.mu.Lock()
	fn := d.callback
	open := d.open
	d.mu.Unlock()
	if fn == nil || !open {
		return
	}
	fn(ev)
}

// Enumerator always finds the one terminal device.
type Enumerator struct {
	Device *Device
}

func (e Enumerator) Enumerate(ctx context.Context) ([]deck.Device, error) {
	if e.Device == nil {
		return nil, deck.ErrNoDevice
	}
	return []deck.Device{e.Device}, nil
}

var (
	_ deck.Device     = (*Device)(nil)
	_ deck.Enumerator = Enumerator{}
)
