// towerdef is a real-time tower defence game played in the terminal.
//
// Usage:
//
//	towerdef play            - Defend the tower (default command)
//	towerdef scores          - Show the best recorded games
//	towerdef serve           - Start SSH server for remote play
//	towerdef config          - Print the effective rules as YAML
//
// Global flags:
//
//	--fps <rate>         - Set frame rate (default: from rules, 24)
//	--seed <value>       - Set RNG seed for reproducible waves
//	--db <path>          - Set database path (default: ~/.towerdef/results.db)
//	--config <path>      - Load rules from a YAML file
//	--difficulty <name>  - easy, normal or hard
//	--log <path>         - Write logs to a file
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-defence/internal/config"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagLogPath    string
	flagDebug      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "towerdef",
	Short: "Tower Defence - Hold the tower against waves of monsters",
	Long: `Tower Defence is a real-time terminal game. Monsters close in on the
tower from every direction; buy machine guns, lasers and mines to stop them
before the tower falls.

Available commands:
  play     - Start a game (default)
  scores   - View the best recorded games
  serve    - Start SSH server for remote play
  config   - Print the effective rules

Examples:
  towerdef
  towerdef play --difficulty hard
  towerdef scores
  towerdef serve --ssh :2222
  towerdef config --config ./my-rules.yaml`,
	SilenceUsage: true,
	RunE:         runPlay,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Frame rate (0 = use the rules)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.towerdef/results.db", "Path to results database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom rules YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	rootCmd.PersistentFlags().StringVar(&flagLogPath, "log", "", "Write logs to this file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// loadRules resolves the rules from the config search path and applies the
// difficulty preset and frame rate override.
func loadRules() (config.Config, config.DifficultyPreset, error) {
	rules, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, "", err
	}

	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return config.Config{}, "", err
	}
	config.ApplyPreset(&rules, preset)

	if flagFPS > 0 {
		rules.Field.FrameRate = flagFPS
	}
	if err := rules.Validate(); err != nil {
		return config.Config{}, "", err
	}
	return rules, preset, nil
}

// newLogger creates the process logger. Interactive commands pass
// io.Discard as fallback since Bubble Tea owns the terminal.
func newLogger(fallback io.Writer, timestamps bool) (*log.Logger, func(), error) {
	out := fallback
	closer := func() {}

	if flagLogPath != "" {
		if err := os.MkdirAll(filepath.Dir(flagLogPath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
		}
		f, err := os.OpenFile(flagLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		out = f
		timestamps = true
		closer = func() { f.Close() }
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: timestamps,
		Prefix:          "towerdef",
	})
	if flagDebug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger, closer, nil
}
