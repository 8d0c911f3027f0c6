package arbitrage

import "errors"

var (
	ErrEmptyCycle         = errors.New("empty cycle")
	ErrBlankAsset         = errors.New("blank asset in cycle")
	ErrOpenCycle          = errors.New("cycle does not close")
	ErrUnknownAnchor      = errors.New("anchor asset not in holdings")
	ErrMissingAnchorPrice = errors.New("missing anchor reference price")
	ErrMissingSymbol      = errors.New("symbol not listed")
	ErrMissingPrice       = errors.New("missing reference price")
	ErrQuantityRejected   = errors.New("quantity rejected by trading rules")
	ErrNoFill             = errors.New("order book has no usable depth")
	ErrDepthFetch         = errors.New("order book fetch failed")
	ErrBookCount          = errors.New("order book count does not match legs")
)

// rejectReason maps an evaluation error to a short metric label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCycle), errors.Is(err, ErrBlankAsset), errors.Is(err, ErrOpenCycle):
		return "invalid_cycle"
	case errors.Is(err, ErrUnknownAnchor):
		return "unknown_anchor"
	case errors.Is(err, ErrMissingAnchorPrice):
		return "missing_anchor_price"
	case errors.Is(err, ErrMissingSymbol):
		return "missing_symbol"
	case errors.Is(err, ErrMissingPrice):
		return "missing_price"
	case errors.Is(err, ErrQuantityRejected):
		return "quantity_rejected"
	case errors.Is(err, ErrNoFill):
		return "no_fill"
	case errors.Is(err, ErrDepthFetch):
		return "depth_fetch"
	default:
		return "other"
	}
}
