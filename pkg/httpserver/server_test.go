package httpserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/depth-arb/internal/arbitrage"
	"github.com/mselser95/depth-arb/internal/orderbook"
	"github.com/mselser95/depth-arb/internal/watchlist"
	"github.com/mselser95/depth-arb/pkg/healthprobe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticPending []string

func (p staticPending) Pending() []string { return p }

func newBooks(t *testing.T) *orderbook.Fetcher {
	t.Helper()

	f := orderbook.New(&orderbook.Config{
		Source: &arbitrage.StubDepthFetcher{Books: map[string][]arbitrage.Level{
			"ETHBTC": {{Price: 0.05, Quantity: 2}, {Price: 0.051, Quantity: 3}},
		}},
		MaxSnapshots: 10,
	})
	_, err := f.OrderbookDepth(context.Background(), "ETHBTC", arbitrage.Asks)
	require.NoError(t, err)
	return f
}

func newTestRouter(t *testing.T, hc *healthprobe.HealthChecker) (http.Handler, *watchlist.Watchlist) {
	t.Helper()

	wl := watchlist.New()
	return NewRouter(&Config{
		Port:          "0",
		Logger:        zap.NewNop(),
		HealthChecker: hc,
		Books:         newBooks(t),
		Watchlist:     wl,
		Pending:       staticPending{"ETH"},
	}), wl
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestNew(t *testing.T) {
	hc := healthprobe.New()
	logger := zap.NewNop()

	s := New(&Config{Port: "8080", Logger: logger, HealthChecker: hc})
	require.NotNil(t, s)
	assert.Equal(t, ":8080", s.server.Addr)
	assert.Equal(t, logger, s.logger)
	assert.Equal(t, hc, s.healthChecker)
}

func TestHealthAndReady(t *testing.T) {
	hc := healthprobe.New()
	h, _ := newTestRouter(t, hc)

	assert.Equal(t, http.StatusOK, get(t, h, "/health").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/ready").Code)

	hc.SetReady(true)
	assert.Equal(t, http.StatusOK, get(t, h, "/ready").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, healthprobe.New())

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "deptharb_orderbook_fetches_total")
}

func TestWatchlistEndpoint(t *testing.T) {
	h, wl := newTestRouter(t, healthprobe.New())

	rec := get(t, h, "/api/watchlist")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp WatchlistResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Symbols)
	assert.NotNil(t, resp.Symbols)
	assert.Empty(t, resp.UpdatedAt)

	wl.Replace([]string{"ETHUSDT", "ETHBTC"})

	rec = get(t, h, "/api/watchlist")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"ETHUSDT", "ETHBTC"}, resp.Symbols)
	assert.Equal(t, uint64(1), resp.Swaps)
	assert.Equal(t, []string{"ETH"}, resp.Pending)

	_, err := time.Parse(time.RFC3339, resp.UpdatedAt)
	assert.NoError(t, err)
}

func TestOrderbookEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, healthprobe.New())

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantAsks bool
	}{
		{name: "both-sides", path: "/api/orderbook/ETHBTC", wantCode: http.StatusOK, wantAsks: true},
		{name: "lowercase-symbol", path: "/api/orderbook/ethbtc?book=asks", wantCode: http.StatusOK, wantAsks: true},
		{name: "bids-not-fetched", path: "/api/orderbook/ETHBTC?book=bids", wantCode: http.StatusNotFound},
		{name: "bad-book", path: "/api/orderbook/ETHBTC?book=middle", wantCode: http.StatusBadRequest},
		{name: "unknown-symbol", path: "/api/orderbook/DOGEBTC", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.path)
			require.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode != http.StatusOK {
				var errResp ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
				assert.NotEmpty(t, errResp.Error)
				return
			}

			var resp OrderbookResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "ETHBTC", resp.Symbol)
			assert.Nil(t, resp.Bids)
			require.Equal(t, tt.wantAsks, resp.Asks != nil)
			assert.Equal(t, 0.05, resp.Asks.BestPrice)
			assert.Equal(t, 5.0, resp.Asks.Depth)
			assert.Len(t, resp.Asks.Levels, 2)
		})
	}
}

func TestOrderbookSymbols(t *testing.T) {
	h, _ := newTestRouter(t, healthprobe.New())

	rec := get(t, h, "/api/orderbook")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SymbolsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"ETHBTC"}, resp.Symbols)
}

func TestOptionalRoutesAbsent(t *testing.T) {
	h := NewRouter(&Config{HealthChecker: healthprobe.New()})

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/watchlist").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/orderbook/ETHBTC").Code)
}

func TestServer_StartShutdown(t *testing.T) {
	s := New(&Config{Port: "0", Logger: zap.NewNop(), HealthChecker: healthprobe.New()})

	done := make(chan error, 1)
	go func() { done <- s.Start() }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
