package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-defence/internal/platform/tui"
	"github.com/vovakirdan/tui-defence/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresTUI   bool
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the best recorded games",
	Long: `Display the best recorded games: victories first, then the furthest
wave, then the healthiest tower.

Examples:
  towerdef scores
  towerdef scores --limit 25
  towerdef scores --tui
  towerdef scores --clear`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of games to show")
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Browse results interactively")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all recorded games")
}

func runScores(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening results database: %w", err)
	}
	defer store.Close()

	if flagScoresClear {
		if err := store.ClearResults(); err != nil {
			return err
		}
		fmt.Println("All results deleted.")
		return nil
	}

	if flagScoresTUI {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		return tui.RunScoreboard(store, width, height)
	}

	results, err := store.TopResults(flagScoresLimit)
	if err != nil {
		return err
	}

	fmt.Println("Tower Defence - Best Games")
	fmt.Println()

	if len(results) == 0 {
		fmt.Println("No games recorded yet.")
		fmt.Println()
		fmt.Println("Run 'towerdef play' to defend the tower!")
		return nil
	}

	fmt.Printf("  %-4s  %-6s  %-4s  %-6s  %-8s  %-8s  %-6s  %s\n",
		"Rank", "Result", "Wave", "Tower", "Money", "Time", "Level", "Date")
	fmt.Printf("  %-4s  %-6s  %-4s  %-6s  %-8s  %-8s  %-6s  %s\n",
		"----", "------", "----", "-----", "-----", "----", "-----", "----")

	for i, r := range results {
		outcome := "lost"
		if r.Won {
			outcome = "won"
		}
		fmt.Printf("  %-4d  %-6s  %-4d  %-6.0f  %-8d  %-8s  %-6s  %s\n",
			i+1, outcome, r.Wave, r.TowerHealth, r.Money, r.Duration, r.Difficulty,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}

	if stats, err := store.GetStats(); err == nil {
		fmt.Println()
		fmt.Printf("Games: %d  Won: %d  Best wave: %d\n", stats.Games, stats.Wins, stats.BestWave)
	}
	return nil
}
