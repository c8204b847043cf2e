package config

import (
	"fmt"
	"math"
	"strings"
)

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// Presets lists the known presets in ascending difficulty.
var Presets = []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard}

// presetScaling holds the multipliers a preset applies to the base rules.
type presetScaling struct {
	money  float64 // initial money
	health float64 // tower health
	income float64 // passive income
}

var presetTable = map[DifficultyPreset]presetScaling{
	DifficultyEasy:   {money: 2.0, health: 1.5, income: 1.5},
	DifficultyNormal: {money: 1.0, health: 1.0, income: 1.0},
	DifficultyHard:   {money: 0.6, health: 0.7, income: 0.5},
}

// ParsePreset validates a preset name. The empty string means normal.
func ParsePreset(name string) (DifficultyPreset, error) {
	if name == "" {
		return DifficultyNormal, nil
	}
	p := DifficultyPreset(name)
	if _, ok := presetTable[p]; !ok {
		return "", fmt.Errorf("unknown difficulty %q (valid: %s)", name, presetNames())
	}
	return p, nil
}

// ApplyPreset scales the economy and tower of cfg for the given preset.
// Unknown presets leave cfg unchanged.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	s, ok := presetTable[preset]
	if !ok {
		return
	}
	cfg.Economy.InitialMoney = int64(math.Round(float64(cfg.Economy.InitialMoney) * s.money))
	cfg.Economy.PassiveIncome = int64(math.Round(float64(cfg.Economy.PassiveIncome) * s.income))
	cfg.Tower.Health = math.Round(cfg.Tower.Health * s.health)
}

func presetNames() string {
	names := make([]string, len(Presets))
	for i, p := range Presets {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
