package binance

import (
	"context"
	"errors"
	"fmt"

	"github.com/mselser95/depth-arb/internal/exchange"
	"go.uber.org/zap"
)

// PriceSource returns last prices keyed by symbol.
type PriceSource interface {
	Prices(ctx context.Context) (map[string]float64, error)
}

// StateProvider assembles exchange snapshots from trading rules and prices.
// Only symbols open for trading and free of excluded assets are kept.
type StateProvider struct {
	symbols  SymbolSource
	prices   []PriceSource
	excluded []string
	logger   *zap.Logger
}

// NewStateProvider creates a provider. Price sources are tried in order; the
// first one that answers wins.
func NewStateProvider(symbols SymbolSource, excluded []string, logger *zap.Logger, prices ...PriceSource) *StateProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StateProvider{
		symbols:  symbols,
		prices:   prices,
		excluded: excluded,
		logger:   logger,
	}
}

// Snapshot returns a filtered exchange snapshot.
func (p *StateProvider) Snapshot(ctx context.Context) (*exchange.Snapshot, error) {
	symbols, err := p.symbols.ExchangeInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("exchange info: %w", err)
	}

	prices, err := p.fetchPrices(ctx)
	if err != nil {
		return nil, err
	}

	snap := exchange.NewSnapshot(symbols, prices).
		Filter(exchange.Trading).
		Filter(exchange.ExcludeAssets(p.excluded))

	SnapshotSymbols.Set(float64(len(snap.Symbols())))
	return snap, nil
}

func (p *StateProvider) fetchPrices(ctx context.Context) (map[string]float64, error) {
	if len(p.prices) == 0 {
		return nil, errors.New("no price source configured")
	}

	var errs []error
	for i, src := range p.prices {
		prices, err := src.Prices(ctx)
		if err == nil {
			return prices, nil
		}
		if !errors.Is(err, ErrStalePrices) {
			p.logger.Warn("price-source-failed", zap.Int("source", i), zap.Error(err))
		}
		errs = append(errs, err)
	}

	return nil, fmt.Errorf("prices: %w", errors.Join(errs...))
}
