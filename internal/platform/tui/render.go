package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-defence/internal/core"
)

// halfBlock shows the even pixel row in the foreground and the odd row in
// the background, so one terminal cell holds two pixels.
const halfBlock = "▀"

// statusLines is the number of terminal rows below the field.
const statusLines = 2

// cellColors is the foreground/background pair of one terminal cell.
type cellColors struct {
	top, bottom core.Pixel
}

// pixelRenderer caches one lipgloss style per color pair.
type pixelRenderer struct {
	styles map[cellColors]lipgloss.Style
}

func newPixelRenderer() *pixelRenderer {
	return &pixelRenderer{styles: make(map[cellColors]lipgloss.Style)}
}

func hexColor(p core.Pixel) lipgloss.Color {
	r, g, b := p.RGB()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}

func (pr *pixelRenderer) style(c cellColors) lipgloss.Style {
	if s, ok := pr.styles[c]; ok {
		return s
	}
	s := lipgloss.NewStyle().Foreground(hexColor(c.top)).Background(hexColor(c.bottom))
	pr.styles[c] = s
	return s
}

// Render converts a framebuffer to a styled string, one terminal row per
// two pixel rows. Adjacent cells with the same colors share one style run
// to minimize ANSI escape sequences.
func (pr *pixelRenderer) Render(fb *core.Framebuffer) string {
	w, h := fb.Width(), fb.Height()
	rows := (h + 1) / 2

	var sb strings.Builder
	sb.Grow(w*rows*len(halfBlock) + rows)

	cell := func(x, row int) cellColors {
		c := cellColors{top: fb.At(x, 2*row), bottom: core.Black}
		if 2*row+1 < h {
			c.bottom = fb.At(x, 2*row+1)
		}
		return c
	}

	for row := 0; row < rows; row++ {
		if row > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < w {
			start := cell(x, row)
			n := 0
			for x < w && cell(x, row) == start {
				n++
				x++
			}
			sb.WriteString(pr.style(start).Render(strings.Repeat(halfBlock, n)))
		}
	}
	return sb.String()
}

// fieldSize returns the framebuffer size for a terminal of the given size.
func fieldSize(cols, rows int) (width, height int) {
	return max(cols, 1), max(rows-statusLines, 1) * 2
}

// cellToPixel maps a terminal cell to the framebuffer point at its center.
func cellToPixel(col, row int) core.Point {
	return core.Point{X: float64(col) + 0.5, Y: float64(2*row + 1)}
}
