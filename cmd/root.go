package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/mselser95/depth-arb/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "depth-arb",
	Short: "Depth-aware cyclic arbitrage validator",
	Long: `Depth-aware cyclic arbitrage validator for Binance spot markets.

Candidate cycles found elsewhere (for example by a negative-cycle search over
last prices) are re-checked against live order-book depth. Cycles that stay
profitable after walking the books feed an adaptive watch-list of symbols.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		_ = godotenv.Load()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "TOML config file (default $CONFIG_FILE)")
}

// loadConfig reads configuration, honoring the --config flag over CONFIG_FILE.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	return config.Load(path)
}
