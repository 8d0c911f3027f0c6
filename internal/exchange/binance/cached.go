package binance

import (
	"context"
	"time"

	"github.com/mselser95/depth-arb/internal/exchange"
	"github.com/mselser95/depth-arb/pkg/cache"
)

const exchangeInfoKey = "binance:exchange-info"

// SymbolSource returns the trading rules of every symbol.
type SymbolSource interface {
	ExchangeInfo(ctx context.Context) (map[string]exchange.SymbolInfo, error)
}

// CachedClient wraps a SymbolSource with a TTL cache. Trading rules change
// rarely, so the selector's fast tick does not refetch them.
type CachedClient struct {
	source SymbolSource
	cache  cache.Cache
	ttl    time.Duration
}

// NewCachedClient creates a cached symbol source. A nil cache disables caching.
func NewCachedClient(source SymbolSource, c cache.Cache, ttl time.Duration) *CachedClient {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedClient{
		source: source,
		cache:  c,
		ttl:    ttl,
	}
}

// ExchangeInfo returns cached trading rules, fetching them on a miss.
func (c *CachedClient) ExchangeInfo(ctx context.Context) (map[string]exchange.SymbolInfo, error) {
	if c.cache == nil {
		return c.source.ExchangeInfo(ctx)
	}

	symbols, hit, err := cache.Load(c.cache, exchangeInfoKey, c.ttl, func() (map[string]exchange.SymbolInfo, error) {
		return c.source.ExchangeInfo(ctx)
	})
	if err != nil {
		return nil, err
	}

	if hit {
		ExchangeInfoCacheHitsTotal.Inc()
	} else {
		ExchangeInfoCacheMissesTotal.Inc()
	}
	return symbols, nil
}

// Invalidate drops the cached rules so the next call refetches them.
func (c *CachedClient) Invalidate() {
	if c.cache != nil {
		c.cache.Delete(exchangeInfoKey)
	}
}
