// Package entity defines the simulation records (monsters, guns, projectiles)
// and their per-type constant tables.
package entity

import (
	"math"

	"github.com/vovakirdan/tui-defence/internal/core"
)

// MonsterType identifies a monster kind.
type MonsterType int

const (
	MonsterSlow MonsterType = iota
	MonsterFast
	MonsterVomiting
)

// NumMonsterTypes is the number of monster kinds.
const NumMonsterTypes = 3

func (t MonsterType) String() string {
	switch t {
	case MonsterSlow:
		return "slow"
	case MonsterFast:
		return "fast"
	case MonsterVomiting:
		return "vomiting"
	default:
		return "unknown"
	}
}

// Valid reports whether t is a known monster type.
func (t MonsterType) Valid() bool {
	return t >= 0 && t < NumMonsterTypes
}

var (
	monsterPower  = [NumMonsterTypes]float64{7, 5, 10}
	monsterSpeed  = [NumMonsterTypes]float64{0.2, 0.6, 0.15}
	monsterRadius = [NumMonsterTypes]float64{1, 0.7, 1.4}
)

// Monster constants.
const (
	VomitingRadius = 6.0
	VomitDamage    = 10.0
	VomitCooldown  = 6 // ticks
	StunTicksStep  = 7 // ticks per mine level
)

// VomitingRadiusOverSqrt2 is VomitingRadius/√2, used by the vomit cone test.
var VomitingRadiusOverSqrt2 = VomitingRadius / math.Sqrt2

// Power is the melee damage a monster deals to a gun per tick of contact.
func (t MonsterType) Power() float64 { return monsterPower[t] }

// Speed is the Euclidean step length of a monster per tick.
func (t MonsterType) Speed() float64 { return monsterSpeed[t] }

// Radius is the logical size of a monster.
func (t MonsterType) Radius() float64 { return monsterRadius[t] }

// InitialLife is the life a monster spawns with.
func (t MonsterType) InitialLife() float64 { return 100 + 20*float64(t) }

// Monster is a live monster owned by the simulation.
type Monster struct {
	ID       int64
	Type     MonsterType
	Position core.Polar
	Life     float64
}

// Alive reports whether the monster still has life.
func (m *Monster) Alive() bool { return m.Life > 0 }

// Damage reduces life by amount, clamping at zero.
// Returns true if this call killed the monster.
func (m *Monster) Damage(amount float64) bool {
	if m.Life == 0 {
		return false
	}
	m.Life = math.Max(0, m.Life-amount)
	return m.Life == 0
}
