package render

import (
	"math"

	"github.com/vovakirdan/tui-defence/internal/core"
	"github.com/vovakirdan/tui-defence/internal/entity"
)

// sprite is a square pixel mask. Background pixels are transparent.
type sprite struct {
	size int
	pix  []core.Pixel
}

// circleSprite builds a filled circle of the given logical radius.
// Objects smaller than a pixel still get a single pixel.
func circleSprite(scale, radius float64, color core.Pixel) sprite {
	r := int(scale * radius)
	if r < 1 {
		return sprite{size: 1, pix: []core.Pixel{color}}
	}

	d := 2 * r
	pix := make([]core.Pixel, d*d)
	for y := 0; y < d; y++ {
		for x := 0; x < d; x++ {
			if math.Hypot(float64(x-r), float64(y-r)) < float64(r) {
				pix[y*d+x] = color
			} else {
				pix[y*d+x] = core.Background
			}
		}
	}
	return sprite{size: d, pix: pix}
}

// blit copies non-background sprite pixels with the sprite's top-left
// corner at (x0, y0), clipping to the framebuffer.
func blit(fb *core.Framebuffer, s sprite, x0, y0 int) {
	xmin := max(0, x0)
	xmax := min(fb.Width(), x0+s.size)
	ymin := max(0, y0)
	ymax := min(fb.Height(), y0+s.size)

	for y := ymin; y < ymax; y++ {
		row := (y - y0) * s.size
		for x := xmin; x < xmax; x++ {
			c := s.pix[row+x-x0]
			if c == core.Background {
				continue
			}
			fb.Set(x, y, c)
		}
	}
}

// blitCentered draws a sprite centered on a screen position.
func blitCentered(fb *core.Framebuffer, s sprite, x, y float64) {
	half := s.size / 2
	blit(fb, s, int(x)-half, int(y)-half)
}

// spriteSet holds every sprite for the current scale.
type spriteSet struct {
	tower        sprite
	guns         [entity.NumGunTypes][entity.NumLevels]sprite
	deadGun      sprite
	projectiles  [entity.NumLevels]sprite
	monsters     [entity.NumMonsterTypes]sprite
	deadMonsters [entity.NumMonsterTypes]sprite
}

var monsterColors = [entity.NumMonsterTypes]core.Pixel{
	core.RGB(255, 255, 0),
	core.RGB(255, 0, 255),
	core.RGB(0, 255, 255),
}

// levelIntensity brightens a channel with the upgrade level.
func levelIntensity(level int) uint8 {
	return uint8(255 / entity.NumLevels * (level + 1))
}

// gunColor is red for machine guns, green for lasers and blue for mines,
// brighter at higher levels.
func gunColor(t entity.GunType, level int) core.Pixel {
	v := levelIntensity(level)
	switch t {
	case entity.GunMachine:
		return core.RGB(v, 0, 0)
	case entity.GunLaser:
		return core.RGB(0, v, 0)
	default:
		return core.RGB(0, 0, v)
	}
}

func projectileColor(level int) core.Pixel {
	return core.RGB(255, levelIntensity(level), 0)
}

func newSpriteSet(scale, towerRadius float64) spriteSet {
	var s spriteSet
	s.tower = circleSprite(scale, towerRadius, core.TowerColor)

	for t := 0; t < entity.NumGunTypes; t++ {
		for level := 0; level < entity.NumLevels; level++ {
			s.guns[t][level] = circleSprite(scale, entity.GunRadius, gunColor(entity.GunType(t), level))
		}
	}
	s.deadGun = circleSprite(scale, entity.GunRadius, core.CorpseColor)

	for level := 0; level < entity.NumLevels; level++ {
		s.projectiles[level] = circleSprite(scale, entity.ProjectileRadius(level), projectileColor(level))
	}

	for t := 0; t < entity.NumMonsterTypes; t++ {
		r := entity.MonsterType(t).Radius()
		s.monsters[t] = circleSprite(scale, r, monsterColors[t])
		s.deadMonsters[t] = circleSprite(scale, r, core.CorpseColor)
	}
	return s
}
