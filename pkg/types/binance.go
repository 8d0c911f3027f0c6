package types

import (
	"fmt"
	"strconv"
)

// ExchangeInfo is the response of GET /api/v3/exchangeInfo.
type ExchangeInfo struct {
	Timezone   string         `json:"timezone"`
	ServerTime int64          `json:"serverTime"`
	Symbols    []SymbolDetail `json:"symbols"`
}

// SymbolDetail describes one spot symbol and its trading filters.
type SymbolDetail struct {
	Symbol     string         `json:"symbol"`
	Status     string         `json:"status"`
	BaseAsset  string         `json:"baseAsset"`
	QuoteAsset string         `json:"quoteAsset"`
	Filters    []SymbolFilter `json:"filters"`
}

// SymbolFilter is one entry of a symbol's filter list. Only the fields of the
// filters we read are decoded.
type SymbolFilter struct {
	FilterType  string `json:"filterType"`
	MinPrice    string `json:"minPrice,omitempty"`
	MaxPrice    string `json:"maxPrice,omitempty"`
	TickSize    string `json:"tickSize,omitempty"`
	MinQty      string `json:"minQty,omitempty"`
	MaxQty      string `json:"maxQty,omitempty"`
	StepSize    string `json:"stepSize,omitempty"`
	MinNotional string `json:"minNotional,omitempty"`
}

// Filter types read from exchangeInfo.
const (
	FilterPriceFilter = "PRICE_FILTER"
	FilterLotSize     = "LOT_SIZE"
	FilterMinNotional = "MIN_NOTIONAL"
	FilterNotional    = "NOTIONAL"
)

// TickerPrice is one entry of GET /api/v3/ticker/price.
type TickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// DepthLevel is a [price, quantity] pair as sent by the depth endpoint.
type DepthLevel [2]string

// Depth is the response of GET /api/v3/depth.
type Depth struct {
	LastUpdateID int64        `json:"lastUpdateId"`
	Bids         []DepthLevel `json:"bids"`
	Asks         []DepthLevel `json:"asks"`
}

// MiniTicker is one element of the !miniTicker@arr stream.
type MiniTicker struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Close     string `json:"c"`
	Open      string `json:"o"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Volume    string `json:"v"`
}

// APIError is the error body returned by the REST API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance api error %d: %s", e.Code, e.Message)
}

// ParseLevel converts a depth level to floats.
func ParseLevel(l DepthLevel) (price float64, quantity float64, err error) {
	price, err = strconv.ParseFloat(l[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse price %q: %w", l[0], err)
	}
	quantity, err = strconv.ParseFloat(l[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse quantity %q: %w", l[1], err)
	}
	return price, quantity, nil
}

// ParseDecimal parses a decimal string, treating "" as zero.
func ParseDecimal(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
