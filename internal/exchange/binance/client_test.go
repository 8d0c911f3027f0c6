package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mselser95/depth-arb/internal/arbitrage"
	"github.com/mselser95/depth-arb/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const exchangeInfoJSON = `{
  "timezone": "UTC",
  "serverTime": 1700000000000,
  "symbols": [
    {
      "symbol": "ETHBTC", "status": "TRADING", "baseAsset": "ETH", "quoteAsset": "BTC",
      "filters": [
        {"filterType": "PRICE_FILTER", "minPrice": "0.00001000", "maxPrice": "922327.00000000", "tickSize": "0.00001000"},
        {"filterType": "LOT_SIZE", "minQty": "0.00010000", "maxQty": "100000.00000000", "stepSize": "0.00010000"},
        {"filterType": "NOTIONAL", "minNotional": "0.00010000", "applyMinToMarket": true}
      ]
    },
    {
      "symbol": "BTCUSDT", "status": "TRADING", "baseAsset": "BTC", "quoteAsset": "USDT",
      "filters": [
        {"filterType": "LOT_SIZE", "minQty": "0.00001000", "maxQty": "9000.00000000", "stepSize": "0.00001000"},
        {"filterType": "MIN_NOTIONAL", "minNotional": "5.00000000"}
      ]
    },
    {
      "symbol": "BTCEUR", "status": "BREAK", "baseAsset": "BTC", "quoteAsset": "EUR", "filters": []
    },
    {
      "symbol": "BADUSDT", "status": "TRADING", "baseAsset": "BAD", "quoteAsset": "USDT",
      "filters": [{"filterType": "LOT_SIZE", "minQty": "abc", "maxQty": "1", "stepSize": "1"}]
    }
  ]
}`

const tickerJSON = `[
  {"symbol": "ETHBTC", "price": "0.05000000"},
  {"symbol": "BTCUSDT", "price": "50000.00"},
  {"symbol": "BTCEUR", "price": "46000.00"},
  {"symbol": "JUNK", "price": "n/a"}
]`

const depthJSON = `{
  "lastUpdateId": 1027024,
  "bids": [["0.04990000", "12.5"], ["0.04980000", "30"]],
  "asks": [["0.05000000", "4.2"], ["0.05010000", "100"]]
}`

func newTestServer(t *testing.T, depthCalls *atomic.Int64) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/exchangeInfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MBX-USED-WEIGHT-1M", "20")
		_, _ = w.Write([]byte(exchangeInfoJSON))
	})
	mux.HandleFunc("/api/v3/ticker/price", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(tickerJSON))
	})
	mux.HandleFunc("/api/v3/depth", func(w http.ResponseWriter, r *http.Request) {
		if depthCalls != nil {
			depthCalls.Add(1)
		}
		if r.URL.Query().Get("symbol") != "ETHBTC" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code": -1121, "msg": "Invalid symbol."}`))
			return
		}
		if r.URL.Query().Get("limit") != "100" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(depthJSON))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ExchangeInfo(t *testing.T) {
	srv := newTestServer(t, nil)
	c := NewClient(ClientConfig{BaseURL: srv.URL, Logger: zap.NewNop()})

	symbols, err := c.ExchangeInfo(context.Background())
	require.NoError(t, err)

	require.Len(t, symbols, 3, "symbol with unparseable filters is skipped")
	eth := symbols["ETHBTC"]
	assert.Equal(t, "ETH", eth.BaseAsset)
	assert.Equal(t, "BTC", eth.QuoteAsset)
	assert.Equal(t, 0.0001, eth.MinQty)
	assert.Equal(t, 100000.0, eth.MaxQty)
	assert.Equal(t, 0.0001, eth.StepSize)
	assert.Equal(t, 0.00001, eth.TickSize)
	assert.Equal(t, 0.0001, eth.MinNotional)

	assert.Equal(t, 5.0, symbols["BTCUSDT"].MinNotional)
	assert.Equal(t, "BREAK", symbols["BTCEUR"].Status)
}

func TestClient_Prices(t *testing.T) {
	srv := newTestServer(t, nil)
	c := NewClient(ClientConfig{BaseURL: srv.URL})

	prices, err := c.Prices(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"ETHBTC": 0.05, "BTCUSDT": 50000, "BTCEUR": 46000}, prices)
}

func TestClient_OrderbookDepth(t *testing.T) {
	srv := newTestServer(t, nil)
	c := NewClient(ClientConfig{BaseURL: srv.URL})

	asks, err := c.OrderbookDepth(context.Background(), "ETHBTC", arbitrage.Asks)
	require.NoError(t, err)
	assert.Equal(t, []arbitrage.Level{{Price: 0.05, Quantity: 4.2}, {Price: 0.0501, Quantity: 100}}, asks)

	bids, err := c.OrderbookDepth(context.Background(), "ETHBTC", arbitrage.Bids)
	require.NoError(t, err)
	assert.Equal(t, []arbitrage.Level{{Price: 0.0499, Quantity: 12.5}, {Price: 0.0498, Quantity: 30}}, bids)
}

func TestClient_APIError(t *testing.T) {
	srv := newTestServer(t, nil)
	c := NewClient(ClientConfig{BaseURL: srv.URL})

	_, err := c.OrderbookDepth(context.Background(), "NOPE", arbitrage.Asks)
	require.Error(t, err)

	var apiErr *types.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, -1121, apiErr.Code)
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := newTestServer(t, nil)
	c := NewClient(ClientConfig{BaseURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Prices(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeDepthLimit(t *testing.T) {
	tests := map[int]int{0: 100, -1: 100, 5: 5, 7: 10, 100: 100, 101: 500, 9999: 5000}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeDepthLimit(in), "limit %d", in)
	}
}

func TestToLevels_Malformed(t *testing.T) {
	_, err := ToLevels([]types.DepthLevel{{"1.0", "x"}})
	assert.Error(t, err)
}
