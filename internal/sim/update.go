package sim

import (
	"math"

	"github.com/vovakirdan/tui-defence/internal/core"
	"github.com/vovakirdan/tui-defence/internal/entity"
	"github.com/vovakirdan/tui-defence/internal/protocol"
)

// towerContactDistance is how close to the tower surface a monster must get
// to hit it.
const towerContactDistance = 0.5

// meleeFactor scales GunRadius into the contact distance between a monster
// and a gun.
const meleeFactor = 1.1

// laserHalfAngle bounds the angular sweep of a laser shot.
const laserHalfAngle = math.Pi / 4

// stepJitter is the maximum relative shortening of a monster's radial step.
const stepJitter = 0.01

// updateObjects runs one pass over arena. Entities with a pending skip count
// only have it decremented. Others are updated; update reports whether the
// entity survives and how many ticks it must skip next. Dead entities are
// removed after the pass. The pass stops early once cont returns false.
func updateObjects[T any](arena *core.Arena[slot[T]], cont func() bool, update func(obj *T) (alive bool, skip int)) {
	var dead []int64
	arena.Each(func(id int64, s *slot[T]) bool {
		if s.skip > 0 {
			s.skip--
			return true
		}

		alive, skip := update(&s.obj)
		if !alive {
			dead = append(dead, id)
		}
		s.skip = skip

		return cont()
	})
	arena.RemoveAll(dead)
}

func always() bool { return true }

func (e *Engine) updateGuns() {
	updateObjects(e.guns, always, e.fireGun)
}

func (e *Engine) updateProjectiles() {
	updateObjects(e.projectiles, always, e.moveProjectile)
}

func (e *Engine) updateMonsters() {
	updateObjects(e.monsters, func() bool { return e.towerHealth > 0 }, e.moveMonster)
}

// fireGun fires a gun according to its type. Mines are passive.
func (e *Engine) fireGun(g *entity.Gun) (bool, int) {
	if !g.Alive() {
		return false, 0
	}

	switch g.Type {
	case entity.GunMachine:
		return true, e.fireMachineGun(g)
	case entity.GunLaser:
		return true, e.fireLaser(g)
	default:
		return true, 0
	}
}

func (e *Engine) fireMachineGun(g *entity.Gun) int {
	e.addProjectile(g.Level, core.NewPolar(g.Position.R+entity.MuzzleOffset, g.Position.Phi))
	return entity.ReloadTicks(g.Type, g.Level)
}

// fireLaser damages every monster beyond the gun whose distance to the ray
// from the tower through the gun is within the ray width.
func (e *Engine) fireLaser(g *entity.Gun) int {
	e.render.Send(protocol.LaserFired{GunID: g.ID})

	width := entity.LaserRayWidth(g.Level)
	power := entity.LaserPower(g.Level)

	e.monsters.Each(func(_ int64, s *slot[entity.Monster]) bool {
		m := &s.obj
		if !m.Alive() || m.Position.R <= g.Position.R {
			return true
		}

		dphi := core.AngleBetween(m.Position.Phi, g.Position.Phi)
		if dphi > laserHalfAngle {
			return true
		}
		if m.Position.R*math.Sin(dphi) <= width && m.Damage(power) {
			e.monsterKilled(m, true)
		}
		return true
	})

	return entity.ReloadTicks(g.Type, g.Level)
}

// sweepDistance returns the closest distance between a point m and a
// projectile travelling along the ray phi from radius r0 to r1.
func sweepDistance(r0, r1, phi float64, m core.Polar) float64 {
	cos := math.Cos(m.Phi - phi)

	t := core.ClampF((m.R*cos-r0)/(r1-r0), 0, 1)
	rt := r0*(1-t) + r1*t

	d2 := rt*rt + m.R*m.R - 2*rt*m.R*cos
	if d2 < 0 {
		return 0
	}
	return math.Sqrt(d2)
}

// moveProjectile advances a projectile outward, hitting at most one monster
// on the swept segment.
func (e *Engine) moveProjectile(p *entity.Projectile) (bool, int) {
	r0 := p.Position.R
	r1 := r0 + p.RadialSpeed()
	radius := p.Radius()

	var target *entity.Monster
	e.monsters.Each(func(_ int64, s *slot[entity.Monster]) bool {
		m := &s.obj
		if !m.Alive() || m.Position.R < r0 {
			return true
		}
		if m.Position.R-m.Type.Radius() > r1+radius {
			return true
		}
		if sweepDistance(r0, r1, p.Position.Phi, m.Position) < radius+m.Type.Radius() {
			target = m
			return false
		}
		return true
	})

	if target != nil {
		if target.Damage(p.Power()) {
			e.monsterKilled(target, true)
		}
		e.render.Send(protocol.ProjectileHit{ID: p.ID})
		return false, 0
	}

	p.Position.R = r1
	e.render.Send(protocol.ProjectileMoved{ID: p.ID, Position: p.Position})

	return r1 <= entity.CullFactor*e.rules.Field.VisibilityRadius, 0
}

// blowMine detonates a mine, damaging monsters with linear falloff.
func (e *Engine) blowMine(mine *entity.Gun) {
	e.render.Send(protocol.MineBlow{GunID: mine.ID})

	radius := entity.ExplosionRadius(mine.Level)
	power := float64(mine.Level+1) * entity.ExplosionPower

	e.monsters.Each(func(_ int64, s *slot[entity.Monster]) bool {
		m := &s.obj
		if !m.Alive() {
			return true
		}
		if math.Abs(m.Position.R-mine.Position.R) > radius+m.Type.Radius() {
			return true
		}

		d := core.PolarDistance(m.Position, mine.Position)
		d = core.ClampF(d-entity.GunRadius-m.Type.Radius(), 0, radius)
		if m.Damage((1 - d/radius) * power) {
			e.monsterKilled(m, true)
		}
		return true
	})

	mine.Life = 0
}

// moveMonster resolves a monster's interactions with the tower and guns, or
// moves it one step closer to the tower.
func (e *Engine) moveMonster(m *entity.Monster) (bool, int) {
	if !m.Alive() {
		return false, 0
	}

	if m.Position.R-e.rules.Tower.Radius < towerContactDistance {
		e.towerHealth = math.Max(0, e.towerHealth-m.Life/10)
		e.notify.Send(protocol.TowerHealthChanged{Health: e.towerHealth})
		m.Life = 0
		e.monsterKilled(m, false)
		return false, 0
	}

	vomiting := m.Type == entity.MonsterVomiting
	var cone float64
	if vomiting {
		cone = math.Atan(entity.VomitingRadiusOverSqrt2 / (m.Position.R - entity.VomitingRadiusOverSqrt2))
	}

	var (
		mine    *entity.Gun
		vomited []*entity.Gun
	)
	e.guns.Each(func(_ int64, s *slot[entity.Gun]) bool {
		g := &s.obj
		if !g.Alive() {
			return true
		}

		if core.PolarDistanceLessThan(m.Position, g.Position, entity.GunRadius*meleeFactor) {
			if g.Type == entity.GunMine {
				mine = g
				return false
			}
			if !vomiting && g.Damage(m.Type.Power()) {
				e.render.Send(protocol.GunDied{ID: g.ID})
			}
		}

		if vomiting && inVomitArea(m.Position, g.Position, cone) {
			vomited = append(vomited, g)
		}
		return true
	})

	if mine != nil {
		e.blowMine(mine)
		if m.Alive() {
			return true, (mine.Level + 1) * entity.StunTicksStep
		}
		return false, 0
	}

	if len(vomited) > 0 {
		e.render.Send(protocol.MonsterVomit{MonsterID: m.ID})
		for _, g := range vomited {
			if g.Damage(entity.VomitDamage) {
				e.render.Send(protocol.GunDied{ID: g.ID})
			}
		}
		return true, entity.VomitCooldown
	}

	e.stepMonster(m)
	return true, 0
}

// inVomitArea reports whether a gun lies in the ±45° sector in front of a
// vomiting monster, facing the tower.
func inVomitArea(m, g core.Polar, cone float64) bool {
	dphi := core.AngleBetween(m.Phi, g.Phi)
	if dphi > cone {
		return false
	}
	if !core.PolarDistanceLessThan(m, g, entity.VomitingRadius) {
		return false
	}
	return g.R <= m.R/math.Cos(dphi)/(1+math.Atan(dphi))
}

// stepMonster moves a monster by a chord of exactly Speed toward the tower,
// turning left or right at random. The radial part of the step is Speed
// shortened by up to stepJitter.
func (e *Engine) stepMonster(m *entity.Monster) {
	s := m.Type.Speed()
	r0 := m.Position.R
	r1 := r0 - s*(1-e.rng.Float64()*stepJitter)

	cos := (r0*r0 + r1*r1 - s*s) / (2 * r0 * r1)
	dphi := math.Acos(core.ClampF(cos, -1, 1))
	if e.rng.Intn(2) == 1 {
		dphi = -dphi
	}

	m.Position = core.NewPolar(r1, m.Position.Phi+dphi)
	e.render.Send(protocol.MonsterMoved{ID: m.ID, Position: m.Position})
}
