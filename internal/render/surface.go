package render

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font"

	"github.com/five82/kimaideck/internal/deck"
)

// Surface turns "text on key N" and "icon on key N" into key images for a
// device. It is safe for concurrent use, although the manager serialises
// render passes anyway.
type Surface struct {
	dev   deck.Device
	size  image.Point
	icons *iconCache

	mu   sync.Mutex // guards face
	face font.Face
}

// NewSurface prepares fonts for the key size of dev.
func NewSurface(dev deck.Device) (*Surface, error) {
	size := dev.ImageSize()
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("device %s reports key size %v", dev.Name(), size)
	}
	face, err := newFace(size)
	if err != nil {
		return nil, err
	}
	return &Surface{
		dev:   dev,
		size:  size,
		icons: newIconCache(),
		face:  face,
	}, nil
}

// TileCount is the number of keys on the device.
func (s *Surface) TileCount() int {
	return deck.TileCount(s.dev)
}

// Clear blanks key index.
func (s *Surface) Clear(index int) error {
	if err := deck.CheckIndex(s.dev, index); err != nil {
		return err
	}
	if err := s.dev.SetKeyImage(index, nil); err != nil {
		return fmt.Errorf("clear key %d: %w", index, err)
	}
	return nil
}

// Text draws word-wrapped, centred text on key index.
func (s *Surface) Text(index int, text string) error {
	if err := deck.CheckIndex(s.dev, index); err != nil {
		return err
	}
	s.mu.Lock()
	img := textImage(s.face, s.size, text)
	s.mu.Unlock()

	if err := s.dev.SetKeyImage(index, img); err != nil {
		return fmt.Errorf("draw text on key %d: %w", index, err)
	}
	return nil
}

// Icon draws one of the fixed glyphs on key index.
func (s *Surface) Icon(index int, icon Icon) error {
	if err := deck.CheckIndex(s.dev, index); err != nil {
		return err
	}
	img, err := s.icons.get(icon, s.size)
	if err != nil {
		return err
	}
	if err := s.dev.SetKeyImage(index, img); err != nil {
		return fmt.Errorf("draw icon %s on key %d: %w", icon, index, err)
	}
	return nil
}
