package arbitrage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mselser95/depth-arb/internal/exchange"
)

// NewTestSymbol builds permissive trading rules for a base/quote pair.
// This is a test helper shared with other packages' tests.
func NewTestSymbol(base, quote string) exchange.SymbolInfo {
	return exchange.SymbolInfo{
		Symbol:     base + quote,
		BaseAsset:  base,
		QuoteAsset: quote,
		Status:     "TRADING",
	}
}

// NewTestSnapshot builds a snapshot from "BASE/QUOTE" -> price pairs.
func NewTestSnapshot(pairs map[string]float64) *exchange.Snapshot {
	symbols := make(map[string]exchange.SymbolInfo, len(pairs))
	prices := make(map[string]float64, len(pairs))

	for pair, price := range pairs {
		var base, quote string
		for i := 0; i < len(pair); i++ {
			if pair[i] == '/' {
				base, quote = pair[:i], pair[i+1:]
				break
			}
		}
		info := NewTestSymbol(base, quote)
		symbols[info.Symbol] = info
		prices[info.Symbol] = price
	}

	return exchange.NewSnapshot(symbols, prices)
}

// AcceptAll is a QuantityValidator that accepts every quantity unchanged.
type AcceptAll struct{}

// ValidateQuantity returns quantity as is.
func (AcceptAll) ValidateQuantity(_ exchange.SymbolInfo, quantity float64, _ float64) (float64, error) {
	return quantity, nil
}

// StubDepthFetcher serves fixed books keyed by symbol, with optional per-symbol
// delays and failures. It records every call.
type StubDepthFetcher struct {
	Books  map[string][]Level
	Delays map[string]time.Duration
	Errors map[string]error

	mu    sync.Mutex
	calls []string
}

// OrderbookDepth returns the configured book for symbol.
func (s *StubDepthFetcher) OrderbookDepth(ctx context.Context, symbol string, book BookType) ([]Level, error) {
	s.mu.Lock()
	s.calls = append(s.calls, symbol)
	s.mu.Unlock()

	if d, ok := s.Delays[symbol]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err, ok := s.Errors[symbol]; ok {
		return nil, err
	}

	levels, ok := s.Books[symbol]
	if !ok {
		return nil, fmt.Errorf("no book for %s", symbol)
	}

	out := make([]Level, len(levels))
	copy(out, levels)
	return out, nil
}

// Calls returns the symbols requested so far.
func (s *StubDepthFetcher) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}
