package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-defence/internal/core"
	"github.com/vovakirdan/tui-defence/internal/platform/tui"
	"github.com/vovakirdan/tui-defence/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Defend the tower",
	Long: `Start a game in the terminal.

Controls:
  1 / 2 / 3  - Pick a machine gun, laser or mine
  + / -      - Change the gun level
  Click      - Place the picked gun
  Esc        - Cancel placing
  ?          - Toggle help
  Ctrl+S     - Save a PNG screenshot of the field
  R          - New game (after game over)
  Q/Ctrl+C   - Quit

Difficulty options:
  easy   - More money and a sturdier tower
  normal - The default rules
  hard   - Less money, a weaker tower and slower income

Examples:
  towerdef play
  towerdef play --difficulty easy
  towerdef play --seed 42 --log ./towerdef.log
  towerdef play --config ./my-rules.yaml`,
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, _ []string) error {
	rules, preset, err := loadRules()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(io.Discard, false)
	if err != nil {
		return err
	}
	defer closeLog()

	rc := core.DefaultConfig()
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		rc.ScreenW = w
		rc.ScreenH = h
	}
	rc.FrameRate = rules.Field.FrameRate
	rc.Seed = flagSeed

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open results database", "err", err)
		fmt.Fprintf(os.Stderr, "Warning: results will not be saved: %v\n", err)
		store = nil
	} else {
		defer store.Close()
	}

	return tui.Run(tui.Options{
		Rules:      rules,
		Difficulty: string(preset),
		Store:      store,
		Logger:     logger,
		Runtime:    rc,
	})
}
