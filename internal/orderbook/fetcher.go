// Package orderbook fetches order-book depth for cycle validation and keeps
// the most recent book of every symbol side it fetched.
package orderbook

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mselser95/depth-arb/internal/arbitrage"
	"go.uber.org/zap"
)

// ErrUnsortedBook is returned when a book side is not ordered best level first.
var ErrUnsortedBook = errors.New("book side not sorted best first")

// Snapshot is the last fetched state of one symbol side.
type Snapshot struct {
	Symbol    string             `json:"symbol"`
	Book      arbitrage.BookType `json:"book"`
	Levels    []arbitrage.Level  `json:"levels"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// BestPrice returns the top-of-book price, zero for an empty side.
func (s *Snapshot) BestPrice() float64 {
	if len(s.Levels) == 0 {
		return 0
	}
	return s.Levels[0].Price
}

// Depth returns the total quantity across all levels.
func (s *Snapshot) Depth() float64 {
	total := 0.0
	for _, l := range s.Levels {
		total += l.Quantity
	}
	return total
}

// Config holds fetcher configuration.
type Config struct {
	Source       arbitrage.DepthFetcher
	Timeout      time.Duration // per request, zero disables
	MaxSnapshots int           // retained book sides, zero disables retention
	Logger       *zap.Logger
}

// Fetcher is an instrumented DepthFetcher.
type Fetcher struct {
	source       arbitrage.DepthFetcher
	timeout      time.Duration
	maxSnapshots int
	logger       *zap.Logger

	mu    sync.RWMutex
	books map[string]*Snapshot // key: symbol/book
}

// New creates a new fetcher.
func New(cfg *Config) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		source:       cfg.Source,
		timeout:      cfg.Timeout,
		maxSnapshots: cfg.MaxSnapshots,
		logger:       logger,
		books:        make(map[string]*Snapshot),
	}
}

// OrderbookDepth fetches one side of symbol's book from the source.
func (f *Fetcher) OrderbookDepth(ctx context.Context, symbol string, book arbitrage.BookType) ([]arbitrage.Level, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	levels, err := f.source.OrderbookDepth(ctx, symbol, book)
	FetchDurationSeconds.WithLabelValues(string(book)).Observe(time.Since(start).Seconds())
	if err != nil {
		FetchesTotal.WithLabelValues(string(book), "error").Inc()
		return nil, fmt.Errorf("fetch %s %s: %w", symbol, book, err)
	}

	err = checkSorted(levels, book)
	if err != nil {
		FetchesTotal.WithLabelValues(string(book), "unsorted").Inc()
		return nil, fmt.Errorf("%s %s: %w", symbol, book, err)
	}

	FetchesTotal.WithLabelValues(string(book), "ok").Inc()
	LevelsPerFetch.Observe(float64(len(levels)))

	f.remember(symbol, book, levels)

	f.logger.Debug("orderbook-fetched",
		zap.String("symbol", symbol),
		zap.String("book", string(book)),
		zap.Int("levels", len(levels)),
		zap.Duration("duration", time.Since(start)))

	return levels, nil
}

// GetSnapshot returns the last fetched book side of symbol.
func (f *Fetcher) GetSnapshot(symbol string, book arbitrage.BookType) (*Snapshot, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	snap, ok := f.books[key(symbol, book)]
	if !ok {
		return nil, false
	}
	out := *snap
	out.Levels = append([]arbitrage.Level(nil), snap.Levels...)
	return &out, true
}

// Symbols returns the symbols with at least one retained side, sorted.
func (f *Fetcher) Symbols() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	seen := make(map[string]bool, len(f.books))
	out := make([]string, 0, len(f.books))
	for _, snap := range f.books {
		if !seen[snap.Symbol] {
			seen[snap.Symbol] = true
			out = append(out, snap.Symbol)
		}
	}
	sort.Strings(out)
	return out
}

func (f *Fetcher) remember(symbol string, book arbitrage.BookType, levels []arbitrage.Level) {
	if f.maxSnapshots <= 0 {
		return
	}

	snap := &Snapshot{
		Symbol:    symbol,
		Book:      book,
		Levels:    append([]arbitrage.Level(nil), levels...),
		FetchedAt: time.Now(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	k := key(symbol, book)
	if _, exists := f.books[k]; !exists && len(f.books) >= f.maxSnapshots {
		f.evictOldest()
	}
	f.books[k] = snap
	SnapshotsTracked.Set(float64(len(f.books)))
}

// evictOldest drops the least recently fetched side. Caller holds mu.
func (f *Fetcher) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for k, snap := range f.books {
		if oldestKey == "" || snap.FetchedAt.Before(oldest) {
			oldestKey = k
			oldest = snap.FetchedAt
		}
	}
	delete(f.books, oldestKey)
}

func key(symbol string, book arbitrage.BookType) string {
	return symbol + "/" + string(book)
}

// checkSorted verifies asks ascend and bids descend by price.
func checkSorted(levels []arbitrage.Level, book arbitrage.BookType) error {
	for i := 1; i < len(levels); i++ {
		prev, cur := levels[i-1].Price, levels[i].Price
		if book == arbitrage.Asks && cur < prev {
			return ErrUnsortedBook
		}
		if book == arbitrage.Bids && cur > prev {
			return ErrUnsortedBook
		}
	}
	return nil
}
