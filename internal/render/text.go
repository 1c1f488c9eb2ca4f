package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/llgcode/draw2d/draw2dimg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	keyBackground   = color.RGBA{0, 0, 0, 255}
	panelBackground = color.RGBA{28, 32, 38, 255}
	textColor       = color.RGBA{255, 255, 255, 255}
)

const (
	referenceKeySize  = 72 // a classic 15-key deck
	referenceFontSize = 14
	textMargin        = 4
	panelRadius       = 8
)

// newFace loads the embedded Go Regular font scaled for keys of size px.
func newFace(keySize image.Point) (font.Face, error) {
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	pt := math.Max(8, referenceFontSize*float64(min(keySize.X, keySize.Y))/referenceKeySize)
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    pt,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// wrapText greedily packs words into lines no wider than width. A single
// word wider than width keeps its own line.
func wrapText(face font.Face, text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	limit := fixed.I(width)
	lines := []string{words[0]}
	for _, word := range words[1:] {
		candidate := lines[len(lines)-1] + " " + word
		if font.MeasureString(face, candidate) <= limit {
			lines[len(lines)-1] = candidate
			continue
		}
		lines = append(lines, word)
	}
	return lines
}

// fitLines drops lines that do not fit maxLines, marking the cut with an
// ellipsis on the last kept line.
func fitLines(lines []string, maxLines int) []string {
	if maxLines < 1 {
		maxLines = 1
	}
	if len(lines) <= maxLines {
		return lines
	}
	kept := append([]string(nil), lines[:maxLines]...)
	kept[maxLines-1] += "…"
	return kept
}

// drawPanel fills a rounded rectangle covering the key.
func drawPanel(img *image.RGBA) {
	b := img.Bounds()
	x, y := float64(b.Min.X)+1, float64(b.Min.Y)+1
	w, h := float64(b.Dx())-2, float64(b.Dy())-2
	r := math.Min(panelRadius, math.Min(w, h)/2)

	gc := draw2dimg.NewGraphicContext(img)
	gc.SetFillColor(panelBackground)
	gc.MoveTo(x+r, y)
	gc.LineTo(x+w-r, y)
	gc.ArcTo(x+w-r, y+r, r, r, -math.Pi/2, math.Pi/2)
	gc.LineTo(x+w, y+h-r)
	gc.ArcTo(x+w-r, y+h-r, r, r, 0, math.Pi/2)
	gc.LineTo(x+r, y+h)
	gc.ArcTo(x+r, y+h-r, r, r, math.Pi/2, math.Pi/2)
	gc.LineTo(x, y+r)
	gc.ArcTo(x+r, y+r, r, r, math.Pi, math.Pi/2)
	gc.Close()
	gc.Fill()
}

// textImage renders text centred on a key image of the given size.
// face must not be used concurrently.
func textImage(face font.Face, size image.Point, text string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(img, img.Bounds(), image.NewUniform(keyBackground), image.Point{}, draw.Src)
	drawPanel(img)

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	if lineHeight <= 0 {
		lineHeight = (metrics.Ascent + metrics.Descent).Ceil()
	}
	lines := wrapText(face, text, size.X-2*textMargin)
	lines = fitLines(lines, (size.Y-2*textMargin)/max(lineHeight, 1))

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: face,
	}
	top := (size.Y - len(lines)*lineHeight) / 2
	for i, line := range lines {
		width := d.MeasureString(line).Round()
		x := (size.X - width) / 2
		y := top + i*lineHeight + metrics.Ascent.Round()
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
	}
	return img
}
