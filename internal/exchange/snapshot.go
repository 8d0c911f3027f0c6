package exchange

import (
	"strings"
	"time"
)

// SymbolInfo holds the trading rules of one spot symbol.
type SymbolInfo struct {
	Symbol      string
	BaseAsset   string
	QuoteAsset  string
	Status      string
	MinQty      float64
	MaxQty      float64
	StepSize    float64
	TickSize    float64
	MinNotional float64
}

// Snapshot is a read-only view of exchange state taken at one point in time.
// It must not be mutated after construction; the selector shares it across
// concurrent depth fetches.
type Snapshot struct {
	symbols map[string]SymbolInfo
	prices  map[string]float64
	TakenAt time.Time
}

// NewSnapshot builds a snapshot from symbol rules and last prices.
func NewSnapshot(symbols map[string]SymbolInfo, prices map[string]float64) *Snapshot {
	if symbols == nil {
		symbols = make(map[string]SymbolInfo)
	}
	if prices == nil {
		prices = make(map[string]float64)
	}

	return &Snapshot{
		symbols: symbols,
		prices:  prices,
		TakenAt: time.Now(),
	}
}

// Symbols returns the symbol rules keyed by symbol.
func (s *Snapshot) Symbols() map[string]SymbolInfo {
	return s.symbols
}

// Prices returns last traded prices keyed by symbol.
func (s *Snapshot) Prices() map[string]float64 {
	return s.prices
}

// Assets returns the distinct assets present in the snapshot's symbols.
func (s *Snapshot) Assets() []string {
	seen := make(map[string]bool)
	assets := make([]string, 0, len(s.symbols))

	for _, info := range s.symbols {
		for _, asset := range []string{info.BaseAsset, info.QuoteAsset} {
			if asset == "" || seen[asset] {
				continue
			}
			seen[asset] = true
			assets = append(assets, asset)
		}
	}

	return assets
}

// Filter returns a new snapshot holding only symbols accepted by keep.
// Prices for dropped symbols are dropped too.
func (s *Snapshot) Filter(keep func(SymbolInfo) bool) *Snapshot {
	symbols := make(map[string]SymbolInfo, len(s.symbols))
	prices := make(map[string]float64, len(s.prices))

	for name, info := range s.symbols {
		if !keep(info) {
			continue
		}
		symbols[name] = info
		if price, ok := s.prices[name]; ok {
			prices[name] = price
		}
	}

	return &Snapshot{
		symbols: symbols,
		prices:  prices,
		TakenAt: s.TakenAt,
	}
}

// ExcludeAssets returns a predicate rejecting symbols whose base or quote asset
// is in the given list.
func ExcludeAssets(assets []string) func(SymbolInfo) bool {
	excluded := make(map[string]bool, len(assets))
	for _, a := range assets {
		excluded[strings.ToUpper(a)] = true
	}

	return func(info SymbolInfo) bool {
		return !excluded[info.BaseAsset] && !excluded[info.QuoteAsset]
	}
}

// Trading accepts symbols currently open for trading.
func Trading(info SymbolInfo) bool {
	return info.Status == "" || info.Status == "TRADING"
}
