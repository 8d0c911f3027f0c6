package arbitrage

import (
	"errors"
	"fmt"
	"testing"
)

// TestMetrics_Registration tests all metrics are initialized
func TestMetrics_Registration(t *testing.T) {
	if CyclesEvaluatedTotal == nil {
		t.Error("CyclesEvaluatedTotal not registered")
	}

	if CyclesRejectedTotal == nil {
		t.Error("CyclesRejectedTotal not registered")
	}

	if RealRate == nil {
		t.Error("RealRate not registered")
	}

	if EvaluationDurationSeconds == nil {
		t.Error("EvaluationDurationSeconds not registered")
	}

	if FanOutDurationSeconds == nil {
		t.Error("FanOutDurationSeconds not registered")
	}
}

func TestRejectReason(t *testing.T) {
	tests := []struct {
		err    error
		reason string
	}{
		{ErrEmptyCycle, "invalid_cycle"},
		{fmt.Errorf("leg 1: %w", ErrOpenCycle), "invalid_cycle"},
		{fmt.Errorf("XRP: %w", ErrUnknownAnchor), "unknown_anchor"},
		{fmt.Errorf("BTCUSDT: %w", ErrMissingAnchorPrice), "missing_anchor_price"},
		{fmt.Errorf("leg 0: %w", ErrMissingSymbol), "missing_symbol"},
		{fmt.Errorf("leg 0: %w", ErrMissingPrice), "missing_price"},
		{fmt.Errorf("leg 2: %w: %w", ErrQuantityRejected, errors.New("below min qty")), "quantity_rejected"},
		{fmt.Errorf("leg 1: %w", ErrNoFill), "no_fill"},
		{fmt.Errorf("leg 1: %w: %w", ErrDepthFetch, errors.New("timeout")), "depth_fetch"},
		{errors.New("boom"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			if got := rejectReason(tt.err); got != tt.reason {
				t.Errorf("expected %q, got %q", tt.reason, got)
			}
		})
	}
}
