package rules

import (
	"testing"

	"github.com/mselser95/depth-arb/internal/exchange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ethbtc() exchange.SymbolInfo {
	return exchange.SymbolInfo{
		Symbol:      "ETHBTC",
		BaseAsset:   "ETH",
		QuoteAsset:  "BTC",
		Status:      "TRADING",
		MinQty:      0.001,
		MaxQty:      100000,
		StepSize:    0.001,
		MinNotional: 0.0001,
	}
}

func TestValidateQuantity_FloorsToStep(t *testing.T) {
	v := NewFilterValidator()

	got, err := v.ValidateQuantity(ethbtc(), 0.40789, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 0.407, got)
}

func TestValidateQuantity_NoRounding(t *testing.T) {
	v := &FilterValidator{}

	got, err := v.ValidateQuantity(ethbtc(), 0.40789, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, 0.40789, got, 1e-12)
}

func TestValidateQuantity_Rejections(t *testing.T) {
	v := NewFilterValidator()

	tests := []struct {
		name     string
		quantity float64
		price    float64
		wantErr  error
	}{
		{name: "zero", quantity: 0, price: 0.05, wantErr: ErrNonPositiveQuantity},
		{name: "negative", quantity: -1, price: 0.05, wantErr: ErrNonPositiveQuantity},
		{name: "floors-below-min", quantity: 0.0009, price: 0.05, wantErr: ErrBelowMinQty},
		{name: "above-max", quantity: 200000, price: 0.05, wantErr: ErrAboveMaxQty},
		{name: "dust-notional", quantity: 0.001, price: 0.05, wantErr: ErrBelowMinNotional},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateQuantity(ethbtc(), tt.quantity, tt.price)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateQuantity_ZeroFiltersAcceptAnything(t *testing.T) {
	v := NewFilterValidator()
	info := exchange.SymbolInfo{Symbol: "BTCUSDT"}

	got, err := v.ValidateQuantity(info, 0.000000123, 50000)
	require.NoError(t, err)
	assert.InDelta(t, 0.000000123, got, 1e-15)
}
