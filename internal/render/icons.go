package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"sync"

	svg "github.com/ajstarks/svgo"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Icon names one of the fixed key glyphs.
type Icon string

const (
	IconNext         Icon = "next"
	IconStart        Icon = "start"
	IconStartWarning Icon = "start-warning"
	IconStop         Icon = "stop"
)

// Icons lists every known icon.
func Icons() []Icon {
	return []Icon{IconNext, IconStart, IconStartWarning, IconStop}
}

const (
	iconGrid   = 100 // icons are authored on a 100x100 view box
	iconMargin = 4   // pixels left free around a scaled icon
)

// iconSVG authors the glyph for icon as an SVG document.
func iconSVG(icon Icon) ([]byte, error) {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(iconGrid, iconGrid, 0, 0, iconGrid, iconGrid)

	switch icon {
	case IconNext:
		canvas.Circle(50, 50, 44, "fill:none;stroke:#FFFFFF;stroke-width:8")
		canvas.Polygon([]int{30, 52, 30}, []int{30, 50, 70}, "fill:#FFFFFF")
		canvas.Polygon([]int{50, 72, 50}, []int{30, 50, 70}, "fill:#FFFFFF")
	case IconStart:
		canvas.Circle(50, 50, 44, "fill:none;stroke:#46EB91;stroke-width:8")
		canvas.Polygon([]int{40, 40, 70}, []int{30, 70, 50}, "fill:#46EB91")
	case IconStartWarning:
		canvas.Circle(50, 50, 48, "fill:#E24826")
		canvas.Polygon([]int{40, 40, 70}, []int{30, 70, 50}, "fill:#FFE500")
	case IconStop:
		canvas.Circle(50, 50, 44, "fill:none;stroke:#E24826;stroke-width:8")
		canvas.Rect(34, 34, 32, 32, "fill:#E24826")
	default:
		return nil, fmt.Errorf("unknown icon %q", icon)
	}

	canvas.End()
	return buf.Bytes(), nil
}

type iconKey struct {
	icon Icon
	size image.Point
}

// iconCache keeps rasterized icons per target size.
type iconCache struct {
	mu     sync.Mutex
	images map[iconKey]*image.RGBA
}

func newIconCache() *iconCache {
	return &iconCache{images: make(map[iconKey]*image.RGBA)}
}

func (c *iconCache) get(icon Icon, size image.Point) (*image.RGBA, error) {
	key := iconKey{icon: icon, size: size}

	c.mu.Lock()
	defer c.mu.Unlock()

	if img, ok := c.images[key]; ok {
		return img, nil
	}
	img, err := RasterizeIcon(icon, size)
	if err != nil {
		return nil, err
	}
	c.images[key] = img
	return img, nil
}

// RasterizeIcon draws icon on an opaque black key image of the given size,
// scaled to fit inside a small margin.
func RasterizeIcon(icon Icon, size image.Point) (*image.RGBA, error) {
	if size.X <= 2*iconMargin || size.Y <= 2*iconMargin {
		return nil, fmt.Errorf("key image %v too small for icons", size)
	}
	data, err := iconSVG(icon)
	if err != nil {
		return nil, err
	}
	parsed, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse icon %s: %w", icon, err)
	}

	w, h := size.X, size.Y
	side := min(w, h) - 2*iconMargin
	x0 := float64(w-side) / 2
	y0 := float64(h-side) / 2
	parsed.SetTarget(x0, y0, float64(side), float64(side))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(keyBackground), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	parsed.Draw(dasher, 1.0)
	return img, nil
}
