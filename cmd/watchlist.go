package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/depth-arb/internal/app"
	"github.com/mselser95/depth-arb/internal/watchlist"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Show the watch-list published to Redis",
	Long:  `Reads the watch-list the running selector last published to Redis (REDIS_ADDR, WATCHLIST_KEY).`,
	RunE:  runWatchlist,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(watchlistCmd)
}

func runWatchlist(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is not set")
	}

	rdb, err := app.NewRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	published, err := watchlist.NewRedisPublisher(rdb, cfg.WatchlistKey, 0).Load(ctx)
	if err != nil {
		return fmt.Errorf("load watchlist: %w", err)
	}

	if len(published.Symbols) == 0 {
		fmt.Println("No watch-list published yet.")
		return nil
	}

	fmt.Printf("Watch-list (%d symbols, updated %s):\n",
		len(published.Symbols), published.UpdatedAt.Format(time.RFC3339))
	for _, sym := range published.Symbols {
		fmt.Printf("  %s\n", sym)
	}
	return nil
}
