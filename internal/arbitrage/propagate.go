package arbitrage

import (
	"fmt"

	"github.com/mselser95/depth-arb/internal/exchange"
)

// MarketState is the read-only exchange view a cycle is evaluated against.
type MarketState interface {
	Symbols() map[string]exchange.SymbolInfo
	Prices() map[string]float64
}

// QuantityValidator checks a proposed base quantity against a symbol's trading
// rules and returns the quantity the exchange would accept.
type QuantityValidator interface {
	ValidateQuantity(info exchange.SymbolInfo, quantity float64, price float64) (float64, error)
}

// Leg is one cycle edge resolved to a traded symbol.
type Leg struct {
	From      string
	To        string
	Symbol    string
	Direction Direction
	BookType  BookType
}

// Propagation is the result of carrying a budget through every leg of a cycle.
type Propagation struct {
	// RealRate is the compounded realized rate across all legs.
	RealRate float64
	// Quantities holds the validated base quantity committed at each leg.
	Quantities []float64
	// Budgets holds the amount of the spent asset fed into each leg.
	Budgets []float64
	// Trades holds the simulated fill of each leg.
	Trades []TradeResult
}

// Propagate applies SimulateTrade to each leg in order, feeding the received
// quantity of leg i as the budget of leg i+1. Any missing metadata, rejected
// quantity or empty fill aborts the whole cycle.
func Propagate(
	legs []Leg,
	books [][]Level,
	budget float64,
	state MarketState,
	validator QuantityValidator,
) (*Propagation, error) {
	if len(legs) == 0 {
		return nil, ErrEmptyCycle
	}
	if len(books) != len(legs) {
		return nil, fmt.Errorf("%d books for %d legs: %w", len(books), len(legs), ErrBookCount)
	}

	symbols := state.Symbols()
	prices := state.Prices()

	result := &Propagation{
		RealRate:   1.0,
		Quantities: make([]float64, 0, len(legs)),
		Budgets:    make([]float64, 0, len(legs)),
		Trades:     make([]TradeResult, 0, len(legs)),
	}
	amountIn := budget

	for i, leg := range legs {
		info, ok := symbols[leg.Symbol]
		if !ok {
			return nil, fmt.Errorf("leg %d %s: %w", i, leg.Symbol, ErrMissingSymbol)
		}
		price, ok := prices[leg.Symbol]
		if !ok || price <= 0 {
			return nil, fmt.Errorf("leg %d %s: %w", i, leg.Symbol, ErrMissingPrice)
		}

		baseQuantity := amountIn
		if leg.Direction == Reverse {
			baseQuantity = amountIn / price
		}

		quantity, err := validator.ValidateQuantity(info, baseQuantity, price)
		if err != nil {
			return nil, fmt.Errorf("leg %d %s amount %g: %w: %w", i, leg.Symbol, amountIn, ErrQuantityRejected, err)
		}

		trade, ok := SimulateTrade(books[i], amountIn, leg.Direction)
		if !ok {
			return nil, fmt.Errorf("leg %d %s: %w", i, leg.Symbol, ErrNoFill)
		}

		result.Quantities = append(result.Quantities, quantity)
		result.Budgets = append(result.Budgets, amountIn)
		result.Trades = append(result.Trades, trade)

		amountIn = trade.TotalQuantity

		if leg.Direction == Forward {
			result.RealRate *= trade.WeightedAveragePrice
		} else {
			result.RealRate *= 1.0 / trade.WeightedAveragePrice
		}
	}

	return result, nil
}
