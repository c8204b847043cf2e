// Package protocol defines the closed message sets exchanged between the
// simulation engine, the render engine and the presentation shell.
//
// Every message is an immutable value copied across a mailbox; no message
// carries a reference into engine-owned state, except Render which hands the
// framebuffer to the render goroutine for the duration of one frame.
package protocol

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-defence/internal/core"
	"github.com/vovakirdan/tui-defence/internal/entity"
)

// ErrUnknownMessage is returned by an engine loop that receives a message
// outside its closed set. It indicates a programming defect.
var ErrUnknownMessage = errors.New("protocol: unknown message")

// UnknownMessage wraps ErrUnknownMessage with the offending value.
func UnknownMessage(owner string, msg any) error {
	return fmt.Errorf("%s: %w %T", owner, ErrUnknownMessage, msg)
}

// SimCommand is a message consumed by the simulation engine.
type SimCommand interface {
	simCommand()
}

// ContinueSimulation advances the simulation by one tick.
type ContinueSimulation struct{}

func (ContinueSimulation) simCommand() {}

// PlaceGun asks the simulation to buy a gun.
type PlaceGun struct {
	Type     entity.GunType
	Level    int
	Position core.Polar
}

func (PlaceGun) simCommand() {}

// RenderMessage is a message consumed by the render engine.
type RenderMessage interface {
	renderMessage()
}

// Resize changes the framebuffer dimensions.
type Resize struct {
	Width, Height int
}

func (Resize) renderMessage() {}

// Render draws one frame into FB. The sender must not touch FB until the
// matching FrameReady notification arrives.
type Render struct {
	FB *core.Framebuffer
}

func (Render) renderMessage() {}

// Stop terminates the render loop.
type Stop struct{}

func (Stop) renderMessage() {}

// NewMonster introduces a spawned monster.
type NewMonster struct {
	ID       int64
	Position core.Polar
	Type     entity.MonsterType
}

func (NewMonster) renderMessage() {}

// MonsterMoved reports a monster's new position.
type MonsterMoved struct {
	ID       int64
	Position core.Polar
}

func (MonsterMoved) renderMessage() {}

// MonsterDied reports that a monster's life reached zero.
type MonsterDied struct {
	ID int64
}

func (MonsterDied) renderMessage() {}

// NewGun introduces a placed gun.
type NewGun struct {
	ID       int64
	Position core.Polar
	Type     entity.GunType
	Level    int
}

func (NewGun) renderMessage() {}

// GunDied reports that a gun was destroyed by monsters.
type GunDied struct {
	ID int64
}

func (GunDied) renderMessage() {}

// NewProjectile introduces a fired projectile.
type NewProjectile struct {
	ID       int64
	Position core.Polar
	Level    int
}

func (NewProjectile) renderMessage() {}

// ProjectileMoved reports a projectile's new position.
type ProjectileMoved struct {
	ID       int64
	Position core.Polar
}

func (ProjectileMoved) renderMessage() {}

// ProjectileHit reports that a projectile struck a monster and is gone.
type ProjectileHit struct {
	ID int64
}

func (ProjectileHit) renderMessage() {}

// LaserFired reports a laser shot from gun ID.
type LaserFired struct {
	GunID int64
}

func (LaserFired) renderMessage() {}

// MineBlow reports a mine detonation. The mine is gone.
type MineBlow struct {
	GunID int64
}

func (MineBlow) renderMessage() {}

// MonsterVomit reports a vomiting monster's ranged attack.
type MonsterVomit struct {
	MonsterID int64
}

func (MonsterVomit) renderMessage() {}

// Notification is delivered to the presentation shell.
type Notification interface {
	notification()
}

// FrameReady reports that the framebuffer of the last Render is complete
// and may be presented and reused.
type FrameReady struct {
	FB *core.Framebuffer
}

func (FrameReady) notification() {}

// MoneyChanged reports the player's balance.
type MoneyChanged struct {
	Money int64
}

func (MoneyChanged) notification() {}

// TowerHealthChanged reports the tower's health.
type TowerHealthChanged struct {
	Health float64
}

func (TowerHealthChanged) notification() {}

// WaveStarted reports that monsters of the given wave have spawned.
type WaveStarted struct {
	Wave     int
	Monsters int
}

func (WaveStarted) notification() {}

// GunPlaced confirms a purchase.
type GunPlaced struct {
	ID    int64
	Type  entity.GunType
	Level int
}

func (GunPlaced) notification() {}

// GameOver is the terminal notification of a game.
type GameOver struct {
	Won         bool
	Wave        int
	TowerHealth float64
	Money       int64
}

func (GameOver) notification() {}
