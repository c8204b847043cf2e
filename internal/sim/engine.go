// Package sim implements the simulation engine: it owns every monster, gun
// and projectile, advances them one tick per ContinueSimulation pulse and
// reports every state change as a message.
package sim

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-defence/internal/config"
	"github.com/vovakirdan/tui-defence/internal/core"
	"github.com/vovakirdan/tui-defence/internal/entity"
	"github.com/vovakirdan/tui-defence/internal/protocol"
)

// ErrInvalidGun is returned when a purchase names an unknown gun type or level.
var ErrInvalidGun = errors.New("sim: invalid gun")

// Outcome is how a simulation run ended.
type Outcome int

const (
	// OutcomeAborted means the command mailbox closed before the game ended.
	OutcomeAborted Outcome = iota
	OutcomeWon
	OutcomeLost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	default:
		return "aborted"
	}
}

// Inbox is the engine's command mailbox.
type Inbox interface {
	Take() (protocol.SimCommand, bool)
}

// RenderSink receives entity and effect events.
type RenderSink interface {
	Send(protocol.RenderMessage) bool
}

// NotifySink receives notifications for the presentation shell.
type NotifySink interface {
	Send(protocol.Notification) bool
}

// slot pairs an entity with the number of ticks it still has to skip.
type slot[T any] struct {
	obj  T
	skip int
}

// Engine is the simulation engine. All state is owned by the goroutine
// executing Run.
type Engine struct {
	rules  config.Config
	inbox  Inbox
	render RenderSink
	notify NotifySink
	rng    *rand.Rand
	now    func() time.Time
	logger *log.Logger

	monsters    *core.Arena[slot[entity.Monster]]
	guns        *core.Arena[slot[entity.Gun]]
	projectiles *core.Arena[slot[entity.Projectile]]

	towerHealth   float64
	money         int64
	monstersAlive int
	wave          int

	nextMonsterID    int64
	nextGunID        int64
	nextProjectileID int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source used for spawning and movement.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithSeed seeds a private random source.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewSource(seed)) }
}

// WithClock sets the clock used for wave delays.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger used for overruns and protocol errors.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates a simulation engine with the given rules.
func New(rules config.Config, inbox Inbox, render RenderSink, notify NotifySink, opts ...Option) *Engine {
	e := &Engine{
		rules:       rules,
		inbox:       inbox,
		render:      render,
		notify:      notify,
		now:         time.Now,
		monsters:    core.NewArena[slot[entity.Monster]](),
		guns:        core.NewArena[slot[entity.Gun]](),
		projectiles: core.NewArena[slot[entity.Projectile]](),
		towerHealth: rules.Tower.Health,
		money:       rules.Economy.InitialMoney,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	return e
}

// Run consumes commands until the game is won or lost, or the inbox closes.
// Win and loss are outcomes; the error is non-nil only for protocol
// violations.
func (e *Engine) Run() (Outcome, error) {
	e.notify.Send(protocol.TowerHealthChanged{Health: e.towerHealth})
	e.notify.Send(protocol.MoneyChanged{Money: e.money})

	for wave := 1; wave <= e.rules.Waves.Count; wave++ {
		e.wave = wave
		previousWaveEnd := e.now()
		waveStarted := false

		for !waveStarted || e.monstersAlive > 0 {
			cmd, ok := e.inbox.Take()
			if !ok {
				e.logger.Debug("simulation inbox closed", "wave", wave)
				return OutcomeAborted, nil
			}

			switch c := cmd.(type) {
			case protocol.ContinueSimulation:
				e.money += e.rules.Economy.PassiveIncome
				if !waveStarted && e.now().Sub(previousWaveEnd) >= e.rules.WaveDelay() {
					e.spawnWave(wave)
					waveStarted = true
				}
				e.step()
				e.notify.Send(protocol.MoneyChanged{Money: e.money})

			case protocol.PlaceGun:
				if err := e.placeGun(c); err != nil {
					e.logger.Error("rejecting simulation command", "err", err)
					return OutcomeAborted, err
				}

			default:
				err := protocol.UnknownMessage("sim", cmd)
				e.logger.Error("rejecting simulation command", "err", err)
				return OutcomeAborted, err
			}

			if e.towerHealth == 0 {
				e.gameOver(false)
				return OutcomeLost, nil
			}
		}
		e.logger.Info("wave cleared", "wave", wave, "tower", e.towerHealth, "money", e.money)
	}

	e.gameOver(true)
	return OutcomeWon, nil
}

func (e *Engine) gameOver(won bool) {
	e.logger.Info("game over", "won", won, "wave", e.wave)
	e.notify.Send(protocol.GameOver{
		Won:         won,
		Wave:        e.wave,
		TowerHealth: e.towerHealth,
		Money:       e.money,
	})
}

// step runs one full update pass: guns, then projectiles, then monsters.
func (e *Engine) step() {
	start := time.Now()

	e.updateGuns()
	e.updateProjectiles()
	e.updateMonsters()

	if took, budget := time.Since(start), e.rules.TickBudget(); took >= budget {
		e.logger.Warn("simulation overran frame budget", "took", took, "budget", budget)
	}
}

// spawnWave creates the monsters of the given wave.
// New monster types unlock as waves progress.
func (e *Engine) spawnWave(wave int) {
	count := e.rules.Waves.MonstersPerWave * wave
	types := int(math.Round(float64(wave) * entity.NumMonsterTypes / float64(e.rules.Waves.Count)))
	types = core.Clamp(types, 1, entity.NumMonsterTypes)

	for i := 0; i < count; i++ {
		t := entity.MonsterType(e.rng.Intn(types))
		r := e.rules.Waves.SpawnRadius + e.rng.Float64()*e.rules.Waves.SpawnRadiusStep*float64(wave)
		phi := e.rng.Float64() * 2 * math.Pi
		e.addMonster(t, core.NewPolar(r, phi), t.InitialLife())
	}

	e.logger.Info("wave started", "wave", wave, "monsters", count, "types", types)
	e.notify.Send(protocol.WaveStarted{Wave: wave, Monsters: count})
}

func (e *Engine) addMonster(t entity.MonsterType, pos core.Polar, life float64) *entity.Monster {
	s := &slot[entity.Monster]{obj: entity.Monster{
		ID:       e.nextMonsterID,
		Type:     t,
		Position: pos,
		Life:     life,
	}}
	e.nextMonsterID++
	e.monsters.Insert(s.obj.ID, s)
	e.monstersAlive++
	e.render.Send(protocol.NewMonster{ID: s.obj.ID, Position: pos, Type: t})
	return &s.obj
}

func (e *Engine) addGun(t entity.GunType, level int, pos core.Polar) *entity.Gun {
	s := &slot[entity.Gun]{obj: entity.Gun{
		ID:       e.nextGunID,
		Type:     t,
		Level:    level,
		Position: pos,
		Life:     entity.GunInitialLife(level),
	}}
	e.nextGunID++
	e.guns.Insert(s.obj.ID, s)
	e.render.Send(protocol.NewGun{ID: s.obj.ID, Position: pos, Type: t, Level: level})
	return &s.obj
}

func (e *Engine) addProjectile(level int, pos core.Polar) *entity.Projectile {
	s := &slot[entity.Projectile]{obj: entity.Projectile{
		ID:       e.nextProjectileID,
		Level:    level,
		Position: pos,
	}}
	e.nextProjectileID++
	e.projectiles.Insert(s.obj.ID, s)
	e.render.Send(protocol.NewProjectile{ID: s.obj.ID, Position: pos, Level: level})
	return &s.obj
}

// placeGun buys a gun if the player can afford it. Insufficient funds is
// not an error: the command is simply ignored.
func (e *Engine) placeGun(c protocol.PlaceGun) error {
	if !c.Type.Valid() || !entity.ValidLevel(c.Level) {
		return fmt.Errorf("%w: type %d level %d", ErrInvalidGun, c.Type, c.Level)
	}

	price := entity.Price(c.Type, c.Level)
	if price > e.money {
		e.logger.Debug("purchase ignored", "gun", c.Type, "level", c.Level, "price", price, "money", e.money)
		return nil
	}

	e.money -= price
	g := e.addGun(c.Type, c.Level, core.NewPolar(c.Position.R, c.Position.Phi))
	e.notify.Send(protocol.MoneyChanged{Money: e.money})
	e.notify.Send(protocol.GunPlaced{ID: g.ID, Type: g.Type, Level: g.Level})
	return nil
}

// monsterKilled accounts for a monster whose life just reached zero.
func (e *Engine) monsterKilled(m *entity.Monster, byGun bool) {
	e.monstersAlive--
	if byGun {
		e.money += e.rules.KillReward(int(m.Type))
	}
	e.render.Send(protocol.MonsterDied{ID: m.ID})
}

// Money returns the player's balance. Only safe from the Run goroutine or
// after Run returned.
func (e *Engine) Money() int64 { return e.money }

// TowerHealth returns the tower's health. Same caveat as Money.
func (e *Engine) TowerHealth() float64 { return e.towerHealth }

// Wave returns the current wave number, starting at 1.
func (e *Engine) Wave() int { return e.wave }
