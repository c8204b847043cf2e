// Package render implements the render engine: a screen-space mirror of the
// simulation, kept current by events, composited into a framebuffer on
// every Render request.
package render

import (
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-defence/internal/config"
	"github.com/vovakirdan/tui-defence/internal/core"
	"github.com/vovakirdan/tui-defence/internal/entity"
	"github.com/vovakirdan/tui-defence/internal/protocol"
)

// ErrNoFramebuffer is returned when a Render request carries no buffer.
var ErrNoFramebuffer = errors.New("render: nil framebuffer")

// Inbox is the render engine's mailbox.
type Inbox interface {
	Take() (protocol.RenderMessage, bool)
}

// SimSink receives the ContinueSimulation pulse after every frame.
type SimSink interface {
	Send(protocol.SimCommand) bool
}

// NotifySink receives FrameReady notifications.
type NotifySink interface {
	Send(protocol.Notification) bool
}

// fieldObject is the render-side view of a monster, gun or projectile.
type fieldObject struct {
	typ              int
	level            int
	pos              core.Point
	dead             bool
	framesSinceDeath int
}

// Engine is the render engine. All state is owned by the goroutine
// executing Run.
type Engine struct {
	rules  config.Config
	inbox  Inbox
	sim    SimSink
	notify NotifySink
	logger *log.Logger

	width, height int
	scale         float64
	sprites       spriteSet

	guns        *core.Arena[fieldObject]
	monsters    *core.Arena[fieldObject]
	projectiles *core.Arena[fieldObject]
	effects     []*effect
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for overruns and protocol errors.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates a render engine.
func New(rules config.Config, inbox Inbox, sim SimSink, notify NotifySink, opts ...Option) *Engine {
	e := &Engine{
		rules:       rules,
		inbox:       inbox,
		sim:         sim,
		notify:      notify,
		guns:        core.NewArena[fieldObject](),
		monsters:    core.NewArena[fieldObject](),
		projectiles: core.NewArena[fieldObject](),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	return e
}

// Run consumes messages until Stop arrives or the inbox closes.
func (e *Engine) Run() error {
	for {
		msg, ok := e.inbox.Take()
		if !ok {
			e.logger.Debug("render inbox closed")
			return nil
		}

		switch m := msg.(type) {
		case protocol.Stop:
			return nil
		case protocol.Resize:
			e.resize(m.Width, m.Height)
		case protocol.Render:
			if m.FB == nil {
				e.logger.Error("rejecting render request", "err", ErrNoFramebuffer)
				return ErrNoFramebuffer
			}
			e.renderFrame(m.FB)
		default:
			if !e.apply(msg) {
				err := protocol.UnknownMessage("render", msg)
				e.logger.Error("rejecting render message", "err", err)
				return err
			}
		}
	}
}

// apply updates the mirror for an entity or effect event. It reports false
// for messages outside the event set.
func (e *Engine) apply(msg protocol.RenderMessage) bool {
	switch m := msg.(type) {
	case protocol.NewMonster:
		e.monsters.Insert(m.ID, &fieldObject{typ: int(m.Type), pos: e.toScreen(m.Position)})
	case protocol.MonsterMoved:
		if o, ok := e.monsters.Get(m.ID); ok {
			o.pos = e.toScreen(m.Position)
		}
	case protocol.MonsterDied:
		if o, ok := e.monsters.Get(m.ID); ok {
			o.dead = true
		}

	case protocol.NewGun:
		e.guns.Insert(m.ID, &fieldObject{typ: int(m.Type), level: m.Level, pos: e.toScreen(m.Position)})
	case protocol.GunDied:
		if o, ok := e.guns.Get(m.ID); ok {
			o.dead = true
		}

	case protocol.NewProjectile:
		e.projectiles.Insert(m.ID, &fieldObject{level: m.Level, pos: e.toScreen(m.Position)})
	case protocol.ProjectileMoved:
		// The simulation drops projectiles past the cull radius silently.
		if m.Position.R > entity.CullFactor*e.rules.Field.VisibilityRadius {
			e.projectiles.Remove(m.ID)
		} else if o, ok := e.projectiles.Get(m.ID); ok {
			o.pos = e.toScreen(m.Position)
		}
	case protocol.ProjectileHit:
		e.projectiles.Remove(m.ID)

	case protocol.LaserFired:
		if g, ok := e.guns.Get(m.GunID); ok {
			e.effects = append(e.effects, &effect{typ: effectLaser, pos: g.pos, level: g.level})
		}
	case protocol.MineBlow:
		if g, ok := e.guns.Get(m.GunID); ok {
			e.guns.Remove(m.GunID)
			e.effects = append(e.effects, &effect{typ: effectExplosion, pos: g.pos, level: g.level})
		}
	case protocol.MonsterVomit:
		if mo, ok := e.monsters.Get(m.MonsterID); ok {
			e.effects = append(e.effects, &effect{typ: effectVomit, pos: mo.pos})
		}

	default:
		return false
	}
	return true
}

func (e *Engine) toScreen(p core.Polar) core.Point {
	return core.PolarToScreen(p, e.scale, e.width, e.height)
}

// resize rescales mirrored positions to the new buffer and regenerates
// sprites for the new polar-to-screen scale.
func (e *Engine) resize(width, height int) {
	if e.width > 0 && e.height > 0 {
		sx := float64(width) / float64(e.width)
		sy := float64(height) / float64(e.height)
		rescale := func(_ int64, o *fieldObject) bool {
			o.pos.X *= sx
			o.pos.Y *= sy
			return true
		}
		e.guns.Each(rescale)
		e.monsters.Each(rescale)
		e.projectiles.Each(rescale)
		for _, ef := range e.effects {
			ef.pos.X *= sx
			ef.pos.Y *= sy
		}
	}

	e.width, e.height = width, height
	e.scale = core.ScreenScale(width, height, e.rules.Field.VisibilityRadius)
	e.sprites = newSpriteSet(e.scale, e.rules.Tower.Radius)
	e.logger.Debug("render resized", "width", width, "height", height, "scale", e.scale)
}

// renderFrame composites one frame, then releases the buffer to the shell
// and lets the simulation advance one tick.
func (e *Engine) renderFrame(fb *core.Framebuffer) {
	if fb.Width() != e.width || fb.Height() != e.height {
		e.resize(fb.Width(), fb.Height())
	}

	start := time.Now()

	fb.Clear(core.Background)
	e.drawTower(fb)
	e.drawObjects(fb, e.guns, e.drawGun)
	e.drawObjects(fb, e.projectiles, e.drawProjectile)
	e.drawObjects(fb, e.monsters, e.drawMonster)
	e.drawEffects(fb)

	if took, budget := time.Since(start), e.rules.TickBudget(); took >= budget {
		e.logger.Warn("render overran frame budget", "took", took, "budget", budget)
	}

	e.notify.Send(protocol.FrameReady{FB: fb})
	e.sim.Send(protocol.ContinueSimulation{})
}

// drawObjects draws every object of an arena, ageing corpses and purging
// those shown for longer than the corpse period.
func (e *Engine) drawObjects(fb *core.Framebuffer, objects *core.Arena[fieldObject], draw func(*core.Framebuffer, *fieldObject)) {
	var expired []int64
	objects.Each(func(id int64, o *fieldObject) bool {
		if o.dead {
			if o.framesSinceDeath > e.rules.Render.CorpseFrames {
				expired = append(expired, id)
				return true
			}
			o.framesSinceDeath++
		}
		draw(fb, o)
		return true
	})
	objects.RemoveAll(expired)
}

func (e *Engine) drawTower(fb *core.Framebuffer) {
	blitCentered(fb, e.sprites.tower, float64(e.width)/2, float64(e.height)/2)
}

func (e *Engine) drawGun(fb *core.Framebuffer, o *fieldObject) {
	if o.dead {
		blitCentered(fb, e.sprites.deadGun, o.pos.X, o.pos.Y)
		return
	}
	blitCentered(fb, e.sprites.guns[o.typ][o.level], o.pos.X, o.pos.Y)
}

func (e *Engine) drawProjectile(fb *core.Framebuffer, o *fieldObject) {
	blitCentered(fb, e.sprites.projectiles[o.level], o.pos.X, o.pos.Y)
}

func (e *Engine) drawMonster(fb *core.Framebuffer, o *fieldObject) {
	if o.dead {
		blitCentered(fb, e.sprites.deadMonsters[o.typ], o.pos.X, o.pos.Y)
		return
	}
	blitCentered(fb, e.sprites.monsters[o.typ], o.pos.X, o.pos.Y)
}
