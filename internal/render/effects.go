package render

import (
	"math"

	"github.com/vovakirdan/tui-defence/internal/core"
	"github.com/vovakirdan/tui-defence/internal/entity"
)

type effectType int

const (
	effectLaser effectType = iota
	effectExplosion
	effectVomit
)

// effectLifetime is the number of frames each effect type stays visible.
var effectLifetime = [...]int{
	effectLaser:     3,
	effectExplosion: 20,
	effectVomit:     3,
}

// effect is a purely visual event with no simulation counterpart.
type effect struct {
	typ   effectType
	age   int
	pos   core.Point
	level int
}

// drawEffects draws live effects in creation order, ageing them and
// dropping those past their lifetime.
func (e *Engine) drawEffects(fb *core.Framebuffer) {
	live := e.effects[:0]
	for _, ef := range e.effects {
		if ef.age > effectLifetime[ef.typ] {
			continue
		}
		ef.age++
		live = append(live, ef)

		switch ef.typ {
		case effectLaser:
			e.drawLaser(fb, ef)
		case effectExplosion:
			e.drawExplosion(fb, ef)
		case effectVomit:
			e.drawVomit(fb, ef)
		}
	}
	clear(e.effects[len(live):])
	e.effects = live
}

// drawLaser draws the ray from the gun outward, away from the tower, up to
// the framebuffer edge.
func (e *Engine) drawLaser(fb *core.Framebuffer, ef *effect) {
	w := float64(fb.Width() - 1)
	h := float64(fb.Height() - 1)
	x0, y0 := ef.pos.X, ef.pos.Y
	dx, dy := x0-w/2, y0-h/2
	if dx == 0 && dy == 0 {
		return
	}

	t := math.Inf(1)
	if dx > 0 {
		t = math.Min(t, (w-x0)/dx)
	} else if dx < 0 {
		t = math.Min(t, -x0/dx)
	}
	if dy > 0 {
		t = math.Min(t, (h-y0)/dy)
	} else if dy < 0 {
		t = math.Min(t, -y0/dy)
	}
	t = math.Max(0, t)

	color := core.RGB(0, uint8(255/(ef.age+1)), 0)
	drawLine(fb, int(x0), int(y0), int(math.Round(x0+t*dx)), int(math.Round(y0+t*dy)), color)
}

// drawExplosion draws a filled circle of the mine's blast radius.
func (e *Engine) drawExplosion(fb *core.Framebuffer, ef *effect) {
	radius := entity.ExplosionRadius(ef.level) * e.scale
	color := core.RGB(uint8(64+191/(ef.age+1)), 0, 0)

	fillDisc(fb, ef.pos, radius, color, func(float64, float64) bool { return true })
}

// drawVomit draws the ±45° sector of the vomit attack, facing the tower.
func (e *Engine) drawVomit(fb *core.Framebuffer, ef *effect) {
	radius := entity.VomitingRadius * e.scale
	c := uint8(102 / (ef.age + 1))
	color := core.RGB(0, c, c)

	cx, cy := float64(fb.Width())/2-ef.pos.X, float64(fb.Height())/2-ef.pos.Y
	n := math.Hypot(cx, cy)
	if n == 0 {
		return
	}
	cx, cy = cx/n, cy/n

	fillDisc(fb, ef.pos, radius, color, func(dx, dy float64) bool {
		d := math.Hypot(dx, dy)
		if d == 0 {
			return false
		}
		return (dx*cx+dy*cy)/d > 1/math.Sqrt2
	})
}

// fillDisc sets every pixel strictly inside the circle around center for
// which keep(dx, dy) holds, (dx, dy) being the offset from center.
func fillDisc(fb *core.Framebuffer, center core.Point, radius float64, color core.Pixel, keep func(dx, dy float64) bool) {
	xmin := max(0, int(center.X-radius))
	xmax := min(fb.Width(), int(center.X+radius)+1)
	ymin := max(0, int(center.Y-radius))
	ymax := min(fb.Height(), int(center.Y+radius)+1)
	r2 := radius * radius

	for y := ymin; y < ymax; y++ {
		for x := xmin; x < xmax; x++ {
			dx, dy := float64(x)-center.X, float64(y)-center.Y
			if dx*dx+dy*dy < r2 && keep(dx, dy) {
				fb.Set(x, y, color)
			}
		}
	}
}

// drawLine rasterizes a segment with Bresenham's algorithm.
func drawLine(fb *core.Framebuffer, x0, y0, x1, y1 int, color core.Pixel) {
	steep := core.Abs(x0-x1) < core.Abs(y0-y1)
	if steep {
		x0, y0 = y0, x0
		x1, y1 = y1, x1
	}
	if x0 > x1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}

	dx := x1 - x0
	derror2 := core.Abs(y1-y0) * 2
	error2 := 0
	ystep := 1
	if y1 < y0 {
		ystep = -1
	}

	y := y0
	for x := x0; x <= x1; x++ {
		if steep {
			fb.Set(y, x, color)
		} else {
			fb.Set(x, y, color)
		}

		error2 += derror2
		if error2 > dx {
			y += ystep
			error2 -= dx * 2
		}
	}
}
