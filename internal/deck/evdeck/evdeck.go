package evdeck

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/holoplot/go-evdev"

	"github.com/five82/kimaideck/internal/deck"
	"github.com/five82/kimaideck/internal/state"
)

// KeySize is the pixel size of the key images kept for the preview.
var KeySize = image.Pt(96, 96)

// DefaultKeyCodes are the keys of a generic macro pad, left to right and
// top to bottom.
var DefaultKeyCodes = []evdev.EvCode{
	evdev.KEY_1, evdev.KEY_2, evdev.KEY_3, evdev.KEY_4, evdev.KEY_5,
	evdev.KEY_6, evdev.KEY_7, evdev.KEY_8, evdev.KEY_9, evdev.KEY_0,
	evdev.KEY_Q, evdev.KEY_W, evdev.KEY_E, evdev.KEY_R, evdev.KEY_T,
	evdev.KEY_Y, evdev.KEY_U, evdev.KEY_I, evdev.KEY_O, evdev.KEY_P,
	evdev.KEY_A, evdev.KEY_S, evdev.KEY_D, evdev.KEY_F, evdev.KEY_G,
	evdev.KEY_H, evdev.KEY_J, evdev.KEY_K, evdev.KEY_L,
	evdev.KEY_Z, evdev.KEY_X, evdev.KEY_C, evdev.KEY_V, evdev.KEY_B,
	evdev.KEY_N, evdev.KEY_M,
}

// Key event values reported by the kernel.
const (
	valueUp     = 0
	valueDown   = 1
	valueRepeat = 2
)

// inputDevice is the part of *evdev.InputDevice the driver uses.
type inputDevice interface {
	ReadOne() (*evdev.InputEvent, error)
	Grab() error
	Ungrab() error
	Close() error
}

var (
	listPaths = evdev.ListDevicePaths
	openInput = func(path string) (inputDevice, error) {
		d, err := evdev.Open(path)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
)

// Options describe the keypad to look for.
type Options struct {
	// Name is the kernel name of the input device.
	Name     string
	Rows     int
	Cols     int
	KeyCodes []int // empty uses DefaultKeyCodes
	// Store receives the key images.
	Store  *state.Store
	Logger *slog.Logger
}

func (o Options) keyMap() (map[evdev.EvCode]int, error) {
	tiles := o.Rows * o.Cols
	if tiles <= 0 {
		return nil, fmt.Errorf("invalid grid %dx%d", o.Rows, o.Cols)
	}
	codes := make([]evdev.EvCode, 0, tiles)
	if len(o.KeyCodes) > 0 {
		if len(o.KeyCodes) != tiles {
			return nil, fmt.Errorf("%d key codes for %d keys", len(o.KeyCodes), tiles)
		}
		for _, c := range o.KeyCodes {
			codes = append(codes, evdev.EvCode(c))
		}
	} else {
		if tiles > len(DefaultKeyCodes) {
			return nil, fmt.Errorf("no default key codes for %d keys", tiles)
		}
		codes = append(codes, DefaultKeyCodes[:tiles]...)
	}

	m := make(map[evdev.EvCode]int, tiles)
	for i, c := range codes {
		if _, dup := m[c]; dup {
			return nil, fmt.Errorf("key code %d used twice", c)
		}
		m[c] = i
	}
	return m, nil
}

// Enumerator finds the keypad by name among the input devices.
type Enumerator struct {
	Options Options
}

func (e Enumerator) Enumerate(ctx context.Context) ([]deck.Device, error) {
	codes, err := e.Options.keyMap()
	if err != nil {
		return nil, err
	}
	paths, err := listPaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}
	for _, p := range paths {
		if p.Name != e.Options.Name {
			continue
		}
		return []deck.Device{newDevice(p.Path, e.Options, codes)}, nil
	}
	return nil, deck.ErrNoDevice
}

// Device is an evdev keypad. It has no screen of its own; key images are
// kept in the store for the preview server.
type Device struct {
	path   string
	name   string
	rows   int
	cols   int
	codes  map[evdev.EvCode]int
	store  *state.Store
	logger *slog.Logger

	mu       sync.Mutex
	in       inputDevice
	callback func(deck.KeyEvent)
	lost     error
	done     chan struct{}
}

func newDevice(path string, opts Options, codes map[evdev.EvCode]int) *Device {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}
	return &Device{
		path:   path,
		name:   opts.Name,
		rows:   opts.Rows,
		cols:   opts.Cols,
		codes:  codes,
		store:  store,
		logger: logger.With("input", path),
	}
}

func (d *Device) Name() string           { return fmt.Sprintf("%s (%s)", d.name, d.path) }
func (d *Device) Rows() int              { return d.rows }
func (d *Device) Cols() int              { return d.cols }
func (d *Device) ImageSize() image.Point { return KeySize }

// Open grabs the keypad and starts reading key events.
func (d *Device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.in != nil {
		return nil
	}

	in, err := openInput(d.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", d.path, err)
	}
	if err := in.Grab(); err != nil {
		d.logger.Warn("failed to grab input device", "error", err)
	}
	d.in = in
	d.lost = nil
	d.done = make(chan struct{})
	d.store.Attach(d.Name(), d.rows, d.cols)

	go d.readLoop(in, d.done)
	return nil
}

func (d *Device) readLoop(in inputDevice, done chan struct{}) {
	defer close(done)
	for {
		ev, err := in.ReadOne()
		if err != nil {
			d.mu.Lock()
			closing := d.in != in
			if !closing {
				d.lost = err
			}
			d.mu.Unlock()
			if !closing {
				d.logger.Error("input device lost", "error", err)
			}
			return
		}
		d.handle(ev)
	}
}

func (d *Device) handle(ev *evdev.InputEvent) {
	if ev == nil || ev.Type != evdev.EV_KEY {
		return
	}
	index, ok := d.codes[ev.Code]
	if !ok {
		return
	}
	var pressed bool
	switch ev.Value {
	case valueDown:
		pressed = true
	case valueUp:
		pressed = false
	default:
		// valueRepeat
		return
	}

	d.mu.Lock()
	fn := d.callback
	d.mu.Unlock()
	if fn != nil {
		fn(deck.KeyEvent{Key: index, Pressed: pressed})
	}
}

// usable reports why the device cannot take images, if it cannot.
func (d *Device) usable() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lost != nil {
		return fmt.Errorf("input device lost: %w", d.lost)
	}
	if d.in == nil {
		return deck.ErrClosed
	}
	return nil
}

func (d *Device) Reset() error {
	if err := d.usable(); err != nil {
		return err
	}
	d.store.ClearTiles()
	return nil
}

func (d *Device) SetKeyImage(index int, img image.Image) error {
	if err := d.usable(); err != nil {
		return err
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

// Close releases the keypad and waits for the reader to stop.
func (d *Device) Close() error {
	d.mu.Lock()
	in, done := d.in, d.done
	d.in = nil
	d.callback = nil
	d.mu.Unlock()
	if in == nil {
		return nil
	}

	errUngrab := in.Ungrab()
	errClose := in.Close()
	<-done
	return errors.Join(errUngrab, errClose)
}

var (
	_ deck.Device     = (*Device)(nil)
	_ deck.Enumerator = Enumerator{}
)
