package termdeck

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

const halfBlock = "▀"

// tileArt renders img as rows of half-block cells, two pixels per cell.
// A nil image yields blank cells.
func tileArt(img image.Image, cols, rows int) []string {
	lines := make([]string, rows)
	if cols <= 0 || rows <= 0 {
		return lines
	}
	if img == nil {
		blank := strings.Repeat(" ", cols)
		for i := range lines {
			lines[i] = blank
		}
		return lines
	}

	small := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)

	var b strings.Builder
	for y := 0; y < rows; y++ {
		b.Reset()
		for x := 0; x < cols; x++ {
			top := small.RGBAAt(x, 2*y)
			bottom := small.RGBAAt(x, 2*y+1)
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexColor(top))).
				Background(lipgloss.Color(hexColor(bottom)))
			b.WriteString(style.Render(halfBlock))
		}
		lines[y] = b.String()
	}
	return lines
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
