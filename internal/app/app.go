// Package app wires the exchange adapters, the cycle validator and the symbol
// selector into one long-running process.
package app

import (
	"context"

	"github.com/mselser95/depth-arb/internal/arbitrage"
	"github.com/mselser95/depth-arb/internal/exchange/binance"
	"github.com/mselser95/depth-arb/internal/orderbook"
	"github.com/mselser95/depth-arb/internal/selector"
	"github.com/mselser95/depth-arb/internal/storage"
	"github.com/mselser95/depth-arb/internal/watchlist"
	"github.com/mselser95/depth-arb/pkg/cache"
	"github.com/mselser95/depth-arb/pkg/config"
	"github.com/mselser95/depth-arb/pkg/healthprobe"
	"github.com/mselser95/depth-arb/pkg/httpserver"
	"github.com/mselser95/depth-arb/pkg/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	cache         *cache.RistrettoCache
	redis         *redis.Client // nil without REDIS_ADDR
	wsManager     *websocket.Manager
	priceStream   *binance.PriceStream // nil when streaming is disabled
	state         *binance.StateProvider
	books         *orderbook.Fetcher
	validator     *arbitrage.Validator
	watchlist     *watchlist.Watchlist
	selector      *selector.Selector
	storage       storage.Storage
	ctx           context.Context
	cancel        context.CancelFunc
}

// Options holds application options.
type Options struct {
	// Cycles are served as is when the cycle source is static.
	Cycles []arbitrage.Cycle
}
