// Package binance reads spot market data from the Binance REST and stream APIs.
package binance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/depth-arb/internal/arbitrage"
	"github.com/mselser95/depth-arb/internal/exchange"
	"github.com/mselser95/depth-arb/pkg/types"
	"go.uber.org/zap"
)

// DefaultBaseURL is the public spot REST endpoint.
const DefaultBaseURL = "https://api.binance.com"

// DefaultDepthLimit is the number of levels requested per book side.
const DefaultDepthLimit = 100

// validDepthLimits are the limits the depth endpoint accepts.
var validDepthLimits = []int{5, 10, 20, 50, 100, 500, 1000, 5000}

// Client is an HTTP client for the public Binance spot API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	depthLimit int
	logger     *zap.Logger
}

// ClientConfig holds REST client configuration.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	DepthLimit int
	Logger     *zap.Logger
}

// NewClient creates a new REST client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		depthLimit: NormalizeDepthLimit(cfg.DepthLimit),
		logger:     logger,
	}
}

// NormalizeDepthLimit rounds limit up to the nearest limit the API accepts.
func NormalizeDepthLimit(limit int) int {
	if limit <= 0 {
		return DefaultDepthLimit
	}
	for _, l := range validDepthLimits {
		if limit <= l {
			return l
		}
	}
	return validDepthLimits[len(validDepthLimits)-1]
}

// ExchangeInfo fetches the trading rules of every spot symbol.
func (c *Client) ExchangeInfo(ctx context.Context) (map[string]exchange.SymbolInfo, error) {
	var info types.ExchangeInfo
	err := c.get(ctx, "exchangeInfo", "/api/v3/exchangeInfo", nil, &info)
	if err != nil {
		return nil, err
	}

	symbols := make(map[string]exchange.SymbolInfo, len(info.Symbols))
	for _, detail := range info.Symbols {
		sym, err := toSymbolInfo(detail)
		if err != nil {
			c.logger.Warn("symbol-filters-unparseable",
				zap.String("symbol", detail.Symbol),
				zap.Error(err))
			continue
		}
		symbols[sym.Symbol] = sym
	}

	c.logger.Debug("fetched-exchange-info", zap.Int("symbols", len(symbols)))
	return symbols, nil
}

// Prices fetches the last traded price of every symbol.
func (c *Client) Prices(ctx context.Context) (map[string]float64, error) {
	var tickers []types.TickerPrice
	err := c.get(ctx, "ticker_price", "/api/v3/ticker/price", nil, &tickers)
	if err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(tickers))
	for _, t := range tickers {
		p, err := strconv.ParseFloat(t.Price, 64)
		if err != nil {
			continue
		}
		prices[t.Symbol] = p
	}
	return prices, nil
}

// Depth fetches both sides of a symbol's order book.
func (c *Client) Depth(ctx context.Context, symbol string, limit int) (*types.Depth, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("limit", strconv.Itoa(NormalizeDepthLimit(limit)))

	var depth types.Depth
	err := c.get(ctx, "depth", "/api/v3/depth", params, &depth)
	if err != nil {
		return nil, err
	}
	return &depth, nil
}

// OrderbookDepth returns one side of a symbol's book, best level first.
func (c *Client) OrderbookDepth(ctx context.Context, symbol string, book arbitrage.BookType) ([]arbitrage.Level, error) {
	depth, err := c.Depth(ctx, symbol, c.depthLimit)
	if err != nil {
		return nil, err
	}

	side := depth.Asks
	if book == arbitrage.Bids {
		side = depth.Bids
	}

	return ToLevels(side)
}

// ToLevels converts wire levels into simulator levels.
func ToLevels(side []types.DepthLevel) ([]arbitrage.Level, error) {
	levels := make([]arbitrage.Level, 0, len(side))
	for _, l := range side {
		price, qty, err := types.ParseLevel(l)
		if err != nil {
			return nil, err
		}
		levels = append(levels, arbitrage.Level{Price: price, Quantity: qty})
	}
	return levels, nil
}

func (c *Client) get(ctx context.Context, endpoint string, path string, params url.Values, out any) error {
	start := time.Now()

	requestURL := c.baseURL + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "depth-arb/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		RequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%s: do request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	RequestDurationSeconds.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if w := resp.Header.Get("X-Mbx-Used-Weight-1m"); w != "" {
		if weight, err := strconv.ParseFloat(w, 64); err == nil {
			UsedWeight.Set(weight)
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response body: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr types.APIError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s: status %d: %w", endpoint, resp.StatusCode, &apiErr)
		}
		return fmt.Errorf("%s: unexpected status code %d: %s", endpoint, resp.StatusCode, string(body))
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		return fmt.Errorf("%s: unmarshal response: %w", endpoint, err)
	}

	return nil
}

func toSymbolInfo(d types.SymbolDetail) (exchange.SymbolInfo, error) {
	info := exchange.SymbolInfo{
		Symbol:     d.Symbol,
		BaseAsset:  d.BaseAsset,
		QuoteAsset: d.QuoteAsset,
		Status:     d.Status,
	}

	var err error
	for _, f := range d.Filters {
		switch f.FilterType {
		case types.FilterPriceFilter:
			info.TickSize, err = types.ParseDecimal(f.TickSize)
		case types.FilterLotSize:
			info.MinQty, err = types.ParseDecimal(f.MinQty)
			if err == nil {
				info.MaxQty, err = types.ParseDecimal(f.MaxQty)
			}
			if err == nil {
				info.StepSize, err = types.ParseDecimal(f.StepSize)
			}
		case types.FilterMinNotional, types.FilterNotional:
			info.MinNotional, err = types.ParseDecimal(f.MinNotional)
		}
		if err != nil {
			return info, fmt.Errorf("filter %s: %w", f.FilterType, err)
		}
	}

	return info, nil
}
