package arbitrage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mselser95/depth-arb/internal/exchange"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DepthFetcher returns one side of a symbol's order book, best level first.
type DepthFetcher interface {
	OrderbookDepth(ctx context.Context, symbol string, book BookType) ([]Level, error)
}

// Config holds cycle validator configuration.
type Config struct {
	AnchorAssets []string // assets the system is funded in
	StableAssets []string // anchors whose budget is USDBudget as is
	USDBudget    float64
	QuoteAsset   string // reference quote for anchor prices, e.g. USDT
	Logger       *zap.Logger
}

// Evaluation is a cycle that survived depth-aware validation.
type Evaluation struct {
	Cycle      Cycle
	Legs       []Leg
	Budget     float64
	RealRate   float64
	Quantities []float64
	Symbols    []string
	Trades     []TradeResult
}

// Validator checks candidate cycles against live order-book depth.
type Validator struct {
	anchors    map[string]bool
	stables    map[string]bool
	usdBudget  float64
	quoteAsset string
	fetcher    DepthFetcher
	quantities QuantityValidator
	logger     *zap.Logger
}

// NewValidator creates a new cycle validator.
func NewValidator(cfg Config, fetcher DepthFetcher, quantities QuantityValidator) *Validator {
	quote := cfg.QuoteAsset
	if quote == "" {
		quote = "USDT"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Validator{
		anchors:    toSet(cfg.AnchorAssets),
		stables:    toSet(cfg.StableAssets),
		usdBudget:  cfg.USDBudget,
		quoteAsset: quote,
		fetcher:    fetcher,
		quantities: quantities,
		logger:     logger,
	}
}

// Validate resolves the cycle's legs, fetches every leg's book concurrently and
// propagates the starting budget through them. It returns an error wrapping one
// of the package sentinels when the cycle is not executable.
func (v *Validator) Validate(ctx context.Context, cycle Cycle, state MarketState) (*Evaluation, error) {
	start := time.Now()
	defer func() {
		EvaluationDurationSeconds.Observe(time.Since(start).Seconds())
	}()
	CyclesEvaluatedTotal.Inc()

	eval, err := v.validate(ctx, cycle, state)
	if err != nil {
		CyclesRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		v.logRejection(cycle, err)
		return nil, err
	}

	RealRate.Observe(eval.RealRate)
	return eval, nil
}

func (v *Validator) validate(ctx context.Context, cycle Cycle, state MarketState) (*Evaluation, error) {
	err := cycle.Validate()
	if err != nil {
		return nil, err
	}

	anchor := cycle.Anchor()
	if !v.anchors[anchor] {
		return nil, fmt.Errorf("%s: %w", anchor, ErrUnknownAnchor)
	}

	budget, err := v.StartingBudget(anchor, state.Prices())
	if err != nil {
		return nil, err
	}

	legs, err := ResolveLegs(cycle, state.Symbols())
	if err != nil {
		return nil, err
	}

	books, err := v.fetchBooks(ctx, legs)
	if err != nil {
		return nil, err
	}

	prop, err := Propagate(legs, books, budget, state, v.quantities)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, len(legs))
	for i, leg := range legs {
		symbols[i] = leg.Symbol
	}

	return &Evaluation{
		Cycle:      cycle,
		Legs:       legs,
		Budget:     budget,
		RealRate:   prop.RealRate,
		Quantities: prop.Quantities,
		Symbols:    symbols,
		Trades:     prop.Trades,
	}, nil
}

// StartingBudget converts the USD budget into units of the anchor asset.
func (v *Validator) StartingBudget(anchor string, prices map[string]float64) (float64, error) {
	if !v.anchors[anchor] {
		return 0, fmt.Errorf("%s: %w", anchor, ErrUnknownAnchor)
	}
	if v.stables[anchor] {
		return v.usdBudget, nil
	}

	pair := anchor + v.quoteAsset
	price, ok := prices[pair]
	if !ok || price <= 0 {
		return 0, fmt.Errorf("%s: %w", pair, ErrMissingAnchorPrice)
	}

	return v.usdBudget / price, nil
}

// MissingAnchorPrices lists the non-stable anchors that have no reference price
// in prices. The run command checks this once at startup.
func (v *Validator) MissingAnchorPrices(prices map[string]float64) []string {
	var missing []string
	for anchor := range v.anchors {
		if v.stables[anchor] {
			continue
		}
		if price, ok := prices[anchor+v.quoteAsset]; !ok || price <= 0 {
			missing = append(missing, anchor)
		}
	}
	return missing
}

// ResolveLegs finds the traded symbol of every edge. The symbol is to+from when
// listed, otherwise from+to; a leg whose from asset is the symbol's base trades
// Forward against the bids, otherwise Reverse against the asks.
func ResolveLegs(cycle Cycle, symbols map[string]exchange.SymbolInfo) ([]Leg, error) {
	legs := make([]Leg, 0, len(cycle))

	for i, edge := range cycle {
		symbol := edge.To + edge.From
		info, ok := symbols[symbol]
		if !ok {
			symbol = edge.From + edge.To
			info, ok = symbols[symbol]
		}
		if !ok {
			return nil, fmt.Errorf("leg %d %s/%s: %w", i, edge.From, edge.To, ErrMissingSymbol)
		}

		forward := strings.HasPrefix(symbol, edge.From)
		if info.BaseAsset != "" {
			forward = info.BaseAsset == edge.From
		}

		leg := Leg{
			From:      edge.From,
			To:        edge.To,
			Symbol:    symbol,
			Direction: Reverse,
			BookType:  Asks,
		}
		if forward {
			leg.Direction = Forward
			leg.BookType = Bids
		}

		legs = append(legs, leg)
	}

	return legs, nil
}

// fetchBooks issues one depth request per leg concurrently and waits for all of
// them. Books are returned in leg order; any failure discards the whole set.
func (v *Validator) fetchBooks(ctx context.Context, legs []Leg) ([][]Level, error) {
	start := time.Now()
	books := make([][]Level, len(legs))

	g, gctx := errgroup.WithContext(ctx)
	for i, leg := range legs {
		g.Go(func() error {
			book, err := v.fetcher.OrderbookDepth(gctx, leg.Symbol, leg.BookType)
			if err != nil {
				return fmt.Errorf("leg %d %s %s: %w: %w", i, leg.Symbol, leg.BookType, ErrDepthFetch, err)
			}
			books[i] = book
			return nil
		})
	}

	err := g.Wait()
	FanOutDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	return books, nil
}

func (v *Validator) logRejection(cycle Cycle, err error) {
	fields := []zap.Field{
		zap.String("cycle", cycle.String()),
		zap.String("anchor", cycle.Anchor()),
		zap.String("reason", rejectReason(err)),
		zap.Error(err),
	}

	switch {
	case errors.Is(err, ErrMissingAnchorPrice):
		v.logger.Error("anchor-price-missing", fields...)
	case errors.Is(err, ErrDepthFetch):
		v.logger.Warn("depth-fetch-failed", fields...)
	case errors.Is(err, ErrUnknownAnchor):
		v.logger.Debug("anchor-not-in-holdings", fields...)
	default:
		v.logger.Debug("cycle-rejected", fields...)
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToUpper(v)] = true
	}
	return set
}
