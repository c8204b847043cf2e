package entity

import "github.com/vovakirdan/tui-defence/internal/core"

// Projectile constants.
const (
	BaseRadialSpeed      = 0.1
	BaseProjectileRadius = 0.6
	LevelRadiusStep      = 0.1
	BaseProjectilePower  = 20.0
	ProjectilePowerStep  = 10.0

	// MuzzleOffset is how far from its gun a projectile is created.
	MuzzleOffset = 0.1
	// CullFactor times the visibility radius is where projectiles are discarded.
	CullFactor = 1.2
)

// Projectile is a machine gun bullet moving outward along a ray.
type Projectile struct {
	ID       int64
	Level    int
	Position core.Polar
}

// RadialSpeed is the radius gained per tick.
func (p *Projectile) RadialSpeed() float64 {
	return BaseRadialSpeed + float64(p.Level)
}

// Radius is the logical size of the projectile.
func (p *Projectile) Radius() float64 {
	return ProjectileRadius(p.Level)
}

// Power is the damage dealt on hit.
func (p *Projectile) Power() float64 {
	return BaseProjectilePower + ProjectilePowerStep*float64(p.Level)
}

// ProjectileRadius is the logical size of a projectile of the given level.
func ProjectileRadius(level int) float64 {
	return BaseProjectileRadius + LevelRadiusStep*float64(level)
}
