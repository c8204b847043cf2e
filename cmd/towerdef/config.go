package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-defence/internal/config"
)

var flagConfigDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective rules as YAML",
	Long: `Print the rules a game would use, after the config search path,
the difficulty preset and the --fps override are applied.

Search order:
  1. --config <path>
  2. ~/.towerdef/config.yaml
  3. ./configs/towerdef.yaml
  4. built-in defaults

Examples:
  towerdef config
  towerdef config --difficulty hard
  towerdef config --defaults > ~/.towerdef/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigDefaults, "defaults", false, "Print the built-in defaults instead")
}

func runConfig(_ *cobra.Command, _ []string) error {
	if flagConfigDefaults {
		fmt.Print(string(config.DefaultYAML()))
		return nil
	}

	rules, _, err := loadRules()
	if err != nil {
		return err
	}
	out, err := config.Marshal(rules)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
