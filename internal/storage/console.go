package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mselser95/depth-arb/internal/arbitrage"
	"go.uber.org/zap"
)

// ConsoleStorage implements Storage by pretty-printing to the console.
type ConsoleStorage struct {
	out    io.Writer
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage writing to stdout.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		out:    os.Stdout,
		logger: logger,
	}
}

// StoreRecord pretty-prints a profitable cycle.
func (c *ConsoleStorage) StoreRecord(ctx context.Context, rec *arbitrage.Record) error {
	assets := make([]string, 0, arbitrage.MaxRecordAssets)
	for _, a := range rec.Assets {
		if a != "" {
			assets = append(assets, a)
		}
	}

	line := strings.Repeat("━", 72)
	fmt.Fprintln(c.out, "\n"+line)
	fmt.Fprintf(c.out, "PROFITABLE CYCLE DETECTED\n")
	fmt.Fprintln(c.out, line)
	fmt.Fprintf(c.out, "ID:       %s\n", rec.ID)
	fmt.Fprintf(c.out, "Time:     %s\n", rec.DetectedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(c.out, "Legs:     %d\n", rec.Length)
	fmt.Fprintf(c.out, "Assets:   %s\n", strings.Join(assets, ", "))
	fmt.Fprintf(c.out, "Rate:     %.6f (%+.4f%%)\n", rec.Rate, (rec.Rate-1)*100)
	fmt.Fprintf(c.out, "Surface:  %+.6f\n", rec.Surface)
	fmt.Fprintln(c.out, line)

	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
