package cmd

import (
	"fmt"

	"github.com/mselser95/depth-arb/internal/app"
	"github.com/mselser95/depth-arb/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the symbol selector",
	Long: `Starts the adaptive symbol selector, which will:
1. Build an exchange snapshot from exchange info and streamed prices
2. Validate every candidate cycle against live order-book depth
3. Record cycles whose realized rate clears MIN_ARB_THRESHOLD
4. Swap the watch-list once enough profitable assets were seen

Use --cycles to validate a fixed set of cycles instead of the configured source.`,
	RunE: runSelector,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringSlice("cycles", nil, "Static cycles as dash-separated asset paths, e.g. USDT-BTC-ETH-USDT")
}

func runSelector(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	paths, _ := cmd.Flags().GetStringSlice("cycles")
	opts := &app.Options{}
	for _, p := range paths {
		cycle, err := parseCycle(p, "-")
		if err != nil {
			return err
		}
		opts.Cycles = append(opts.Cycles, cycle)
	}
	if len(opts.Cycles) > 0 {
		cfg.CyclesSource = config.CyclesStatic
	}

	application, err := app.New(cfg, logger, opts)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
