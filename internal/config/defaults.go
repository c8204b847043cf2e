package config

import (
	_ "embed"
)

//go:embed defaults/towerdef.yaml
var defaultYAML []byte

// Default returns the hard-coded default rules.
func Default() Config {
	return Config{
		Field: FieldConfig{
			VisibilityRadius: 100,
			FrameRate:        24,
		},
		Tower: TowerConfig{
			Radius: 7,
			Health: 1000,
		},
		Economy: EconomyConfig{
			InitialMoney:   1000,
			PassiveIncome:  10,
			KillRewardStep: 200,
		},
		Waves: WavesConfig{
			Count:           5,
			MonstersPerWave: 100,
			DelaySeconds:    10,
			SpawnRadius:     100,
			SpawnRadiusStep: 20,
		},
		Render: RenderConfig{
			CorpseFrames: 10,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
