// Package rules applies exchange trading filters to simulated leg quantities.
package rules

import (
	"errors"
	"fmt"

	"github.com/mselser95/depth-arb/internal/exchange"
	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveQuantity = errors.New("quantity must be positive")
	ErrBelowMinQty         = errors.New("quantity below minimum lot size")
	ErrAboveMaxQty         = errors.New("quantity above maximum lot size")
	ErrBelowMinNotional    = errors.New("notional below minimum")
)

// FilterValidator checks a base-asset quantity against a symbol's LOT_SIZE and
// MIN_NOTIONAL filters. Zero-valued filters are not enforced.
type FilterValidator struct {
	// RoundToStep floors accepted quantities to the symbol's step size.
	RoundToStep bool
}

// NewFilterValidator creates a validator that floors quantities to the step size.
func NewFilterValidator() *FilterValidator {
	return &FilterValidator{RoundToStep: true}
}

// ValidateQuantity returns the tradable quantity or an error naming the filter
// that rejected it. Arithmetic is done in decimal so step flooring is exact.
func (f *FilterValidator) ValidateQuantity(info exchange.SymbolInfo, quantity float64, price float64) (float64, error) {
	qty := decimal.NewFromFloat(quantity)
	if !qty.IsPositive() {
		RejectionsTotal.WithLabelValues("quantity").Inc()
		return 0, fmt.Errorf("%s qty=%s: %w", info.Symbol, qty, ErrNonPositiveQuantity)
	}

	if f.RoundToStep && info.StepSize > 0 {
		step := decimal.NewFromFloat(info.StepSize)
		qty = qty.Div(step).Floor().Mul(step)
	}

	if info.MinQty > 0 && qty.LessThan(decimal.NewFromFloat(info.MinQty)) {
		RejectionsTotal.WithLabelValues("min_qty").Inc()
		return 0, fmt.Errorf("%s qty=%s min=%v: %w", info.Symbol, qty, info.MinQty, ErrBelowMinQty)
	}

	if info.MaxQty > 0 && qty.GreaterThan(decimal.NewFromFloat(info.MaxQty)) {
		RejectionsTotal.WithLabelValues("max_qty").Inc()
		return 0, fmt.Errorf("%s qty=%s max=%v: %w", info.Symbol, qty, info.MaxQty, ErrAboveMaxQty)
	}

	if info.MinNotional > 0 {
		notional := qty.Mul(decimal.NewFromFloat(price))
		if notional.LessThan(decimal.NewFromFloat(info.MinNotional)) {
			RejectionsTotal.WithLabelValues("min_notional").Inc()
			return 0, fmt.Errorf("%s notional=%s min=%v: %w",
				info.Symbol, notional.StringFixed(8), info.MinNotional, ErrBelowMinNotional)
		}
	}

	out, _ := qty.Float64()
	return out, nil
}
