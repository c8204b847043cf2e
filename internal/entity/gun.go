package entity

import (
	"math"

	"github.com/vovakirdan/tui-defence/internal/core"
)

// GunType identifies a gun kind.
type GunType int

const (
	GunMachine GunType = iota
	GunLaser
	GunMine
)

// NumGunTypes is the number of gun kinds.
const NumGunTypes = 3

// NumLevels is the number of upgrade levels per gun type.
const NumLevels = 5

// Gun constants.
const (
	GunRadius           = 1.5
	ExplosionBaseRadius = 1.7
	ExplosionRadiusStep = 1.0
	ExplosionPower      = 130.0
	BaseLaserRayWidth   = 2.0
	LaserRayWidthStep   = 0.2
	BaseLaserPower      = 40.0
	LaserPowerStep      = 5.0

	MachineReloadStep = 5 // ticks per missing level
	LaserReloadStep   = 7
)

func (t GunType) String() string {
	switch t {
	case GunMachine:
		return "machine"
	case GunLaser:
		return "laser"
	case GunMine:
		return "mine"
	default:
		return "unknown"
	}
}

// Valid reports whether t is a known gun type.
func (t GunType) Valid() bool {
	return t >= 0 && t < NumGunTypes
}

// ValidLevel reports whether level is in [0, NumLevels).
func ValidLevel(level int) bool {
	return level >= 0 && level < NumLevels
}

// Price returns the cost of a gun of the given type and level.
func Price(t GunType, level int) int64 {
	base := int64(200)
	if t == GunLaser {
		base = 400
	}
	return base * int64(level+1)
}

// GunInitialLife is the life a freshly placed gun starts with.
func GunInitialLife(level int) float64 {
	return 80 + 20*float64(level)
}

// ExplosionRadius is the blast radius of a mine of the given level.
func ExplosionRadius(level int) float64 {
	return ExplosionBaseRadius + ExplosionRadiusStep*float64(level)
}

// LaserRayWidth is the half-width of a laser ray of the given level.
func LaserRayWidth(level int) float64 {
	return BaseLaserRayWidth + LaserRayWidthStep*float64(level)
}

// LaserPower is the damage a laser of the given level deals per shot.
func LaserPower(level int) float64 {
	return BaseLaserPower + LaserPowerStep*float64(level)
}

// ReloadTicks is the number of ticks a gun waits between shots.
// Mines never fire and return 0.
func ReloadTicks(t GunType, level int) int {
	switch t {
	case GunMachine:
		return (NumLevels - level) * MachineReloadStep
	case GunLaser:
		return (NumLevels - level) * LaserReloadStep
	default:
		return 0
	}
}

// Gun is a placed gun owned by the simulation.
type Gun struct {
	ID       int64
	Type     GunType
	Level    int
	Position core.Polar
	Life     float64
}

// Alive reports whether the gun still has life.
func (g *Gun) Alive() bool { return g.Life > 0 }

// Damage reduces life by amount, clamping at zero.
// Returns true if this call destroyed the gun.
func (g *Gun) Damage(amount float64) bool {
	if g.Life == 0 {
		return false
	}
	g.Life = math.Max(0, g.Life-amount)
	return g.Life == 0
}
