package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mselser95/depth-arb/internal/app"
	"github.com/mselser95/depth-arb/internal/arbitrage"
	"github.com/mselser95/depth-arb/internal/exchange/binance"
	"github.com/mselser95/depth-arb/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var validateCycleCmd = &cobra.Command{
	Use:   "validate-cycle ASSET,ASSET,...",
	Short: "Validate one cycle against live order-book depth",
	Long: `Resolves each hop of the cycle to a Binance symbol, fetches the needed
book sides and walks them with the configured budget. The first and last asset
must be the same anchor asset, e.g.

  depth-arb validate-cycle USDT,BTC,ETH,USDT`,
	Args: cobra.ExactArgs(1),
	RunE: runValidateCycle,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(validateCycleCmd)
	validateCycleCmd.Flags().Bool("record", false, "Store the cycle in the configured sinks when profitable")
	validateCycleCmd.Flags().Duration("timeout", 30*time.Second, "Overall timeout")
}

func parseCycle(path string, sep string) (arbitrage.Cycle, error) {
	assets := strings.Split(path, sep)
	cycle, err := arbitrage.CycleFromAssets(assets)
	if err != nil {
		return nil, fmt.Errorf("parse cycle %q: %w", path, err)
	}
	return cycle, nil
}

func runValidateCycle(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	record, _ := cmd.Flags().GetBool("record")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

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

	cycle, err := parseCycle(args[0], ",")
	if err != nil {
		return err
	}

	client := binance.NewClient(binance.ClientConfig{
		BaseURL:    cfg.BinanceRESTURL,
		Timeout:    cfg.BinanceTimeout,
		DepthLimit: cfg.DepthLimit,
		Logger:     logger,
	})
	state := binance.NewStateProvider(client, cfg.FiatExclusion, logger, client)
	validator := app.NewValidator(cfg, logger, client)

	snap, err := state.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot exchange: %w", err)
	}

	eval, err := validator.Validate(ctx, cycle, snap)
	if err != nil {
		return fmt.Errorf("validate %s: %w", cycle, err)
	}

	printEvaluation(eval, cfg.MinArbThreshold)

	if record && eval.RealRate >= cfg.MinArbThreshold {
		sink, err := app.NewStorage(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer sink.Close()

		rec := arbitrage.NewRecord(eval.Cycle, eval.RealRate, arbitrage.SurfaceRate(eval.Cycle), time.Now())
		err = sink.StoreRecord(ctx, rec)
		if err != nil {
			return fmt.Errorf("store record: %w", err)
		}
		fmt.Printf("\nStored record %s\n", rec.ID)
	}

	return nil
}

func printEvaluation(eval *arbitrage.Evaluation, threshold float64) {
	fmt.Printf("Cycle: %s\n", eval.Cycle)
	fmt.Printf("Starting budget: %.8f %s\n\n", eval.Budget, eval.Cycle.Anchor())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LEG\tSYMBOL\tDIRECTION\tBOOK\tQUANTITY\tAVG PRICE\tSPENT\tRECEIVED")
	for i, leg := range eval.Legs {
		trade := eval.Trades[i]
		fmt.Fprintf(w, "%s->%s\t%s\t%s\t%s\t%.8f\t%.8f\t%.8f\t%.8f\n",
			leg.From, leg.To, leg.Symbol, leg.Direction, leg.BookType,
			eval.Quantities[i], trade.WeightedAveragePrice, trade.TotalCost, trade.TotalQuantity)
	}
	_ = w.Flush()

	verdict := "not profitable"
	if eval.RealRate >= threshold {
		verdict = "PROFITABLE"
	}
	fmt.Printf("\nRealized rate: %.6f (threshold %.6f) %s\n", eval.RealRate, threshold, verdict)
}
