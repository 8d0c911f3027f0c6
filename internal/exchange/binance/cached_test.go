package binance

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mselser95/depth-arb/internal/exchange"
	"github.com/mselser95/depth-arb/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSymbols struct {
	calls atomic.Int64
	err   error
}

func (c *countingSymbols) ExchangeInfo(context.Context) (map[string]exchange.SymbolInfo, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return map[string]exchange.SymbolInfo{"ETHBTC": {Symbol: "ETHBTC", BaseAsset: "ETH", QuoteAsset: "BTC"}}, nil
}

func newCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		Name:        "exchange-info",
		NumCounters: 100,
		MaxCost:     10,
		BufferItems: 64,
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestCachedClient_ServesFromCache(t *testing.T) {
	src := &countingSymbols{}
	c := NewCachedClient(src, newCache(t), time.Hour)

	for i := 0; i < 3; i++ {
		symbols, err := c.ExchangeInfo(context.Background())
		require.NoError(t, err)
		assert.Contains(t, symbols, "ETHBTC")
	}
	assert.Equal(t, int64(1), src.calls.Load())

	c.Invalidate()
	_, err := c.ExchangeInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), src.calls.Load())
}

func TestCachedClient_NilCache(t *testing.T) {
	src := &countingSymbols{}
	c := NewCachedClient(src, nil, 0)

	_, _ = c.ExchangeInfo(context.Background())
	_, _ = c.ExchangeInfo(context.Background())
	assert.Equal(t, int64(2), src.calls.Load())
}

func TestCachedClient_ErrorsAreNotCached(t *testing.T) {
	src := &countingSymbols{err: errors.New("503")}
	c := NewCachedClient(src, newCache(t), time.Hour)

	_, err := c.ExchangeInfo(context.Background())
	assert.Error(t, err)

	src.err = nil
	symbols, err := c.ExchangeInfo(context.Background())
	require.NoError(t, err)
	assert.Len(t, symbols, 1)
}
