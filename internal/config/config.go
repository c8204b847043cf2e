// Package config provides YAML-based rules loading and difficulty presets
// for the tower defence engine.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config contains the tunable rules of a game.
type Config struct {
	Field   FieldConfig   `yaml:"field"`
	Tower   TowerConfig   `yaml:"tower"`
	Economy EconomyConfig `yaml:"economy"`
	Waves   WavesConfig   `yaml:"waves"`
	Render  RenderConfig  `yaml:"render"`
}

// FieldConfig defines the logical field and pacing.
type FieldConfig struct {
	VisibilityRadius float64 `yaml:"visibility_radius"`
	FrameRate        int     `yaml:"frame_rate"` // frames (and simulation ticks) per second
}

// TowerConfig defines the defended tower.
type TowerConfig struct {
	Radius float64 `yaml:"radius"`
	Health float64 `yaml:"health"`
}

// EconomyConfig defines the player's currency flow.
type EconomyConfig struct {
	InitialMoney   int64 `yaml:"initial_money"`
	PassiveIncome  int64 `yaml:"passive_income"`   // added on every tick
	KillRewardStep int64 `yaml:"kill_reward_step"` // reward = step * (monster type + 1)
}

// WavesConfig defines monster waves.
type WavesConfig struct {
	Count           int     `yaml:"count"`
	MonstersPerWave int     `yaml:"monsters_per_wave"` // wave w spawns MonstersPerWave * w
	DelaySeconds    float64 `yaml:"delay_seconds"`     // pause before each wave
	SpawnRadius     float64 `yaml:"spawn_radius"`
	SpawnRadiusStep float64 `yaml:"spawn_radius_step"` // spawn radius = SpawnRadius + U*step*w
}

// RenderConfig defines cosmetic render parameters.
type RenderConfig struct {
	CorpseFrames int `yaml:"corpse_frames"`
}

// FrameInterval returns the presentation timer period.
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Field.FrameRate)
}

// TickBudget returns the time a single simulation or render pass may take
// before an overrun is reported: half a frame.
func (c Config) TickBudget() time.Duration {
	return c.FrameInterval() / 2
}

// WaveDelay returns the pause before each wave as a duration.
func (c Config) WaveDelay() time.Duration {
	return time.Duration(c.Waves.DelaySeconds * float64(time.Second))
}

// KillReward returns the currency granted for killing a monster of type t.
func (c Config) KillReward(monsterType int) int64 {
	return c.Economy.KillRewardStep * int64(monsterType+1)
}

// ErrInvalidConfig is wrapped by all validation failures.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks that all values are usable.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, field string) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidConfig, field))
		}
	}

	check(c.Field.VisibilityRadius > 0, "field.visibility_radius must be positive")
	check(c.Field.FrameRate > 0, "field.frame_rate must be positive")
	check(c.Tower.Radius > 0, "tower.radius must be positive")
	check(c.Tower.Radius < c.Field.VisibilityRadius, "tower.radius must be smaller than field.visibility_radius")
	check(c.Tower.Health > 0, "tower.health must be positive")
	check(c.Economy.InitialMoney >= 0, "economy.initial_money must not be negative")
	check(c.Economy.PassiveIncome >= 0, "economy.passive_income must not be negative")
	check(c.Economy.KillRewardStep >= 0, "economy.kill_reward_step must not be negative")
	check(c.Waves.Count > 0, "waves.count must be positive")
	check(c.Waves.MonstersPerWave > 0, "waves.monsters_per_wave must be positive")
	check(c.Waves.DelaySeconds >= 0, "waves.delay_seconds must not be negative")
	check(c.Waves.SpawnRadius > c.Tower.Radius, "waves.spawn_radius must lie outside the tower")
	check(c.Waves.SpawnRadiusStep >= 0, "waves.spawn_radius_step must not be negative")
	check(c.Render.CorpseFrames >= 0, "render.corpse_frames must not be negative")

	return errors.Join(errs...)
}
