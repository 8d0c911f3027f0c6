package app

import (
	"context"
	"fmt"

	"github.com/mselser95/depth-arb/internal/arbitrage"
	"github.com/mselser95/depth-arb/internal/cycles"
	"github.com/mselser95/depth-arb/internal/exchange/binance"
	"github.com/mselser95/depth-arb/internal/orderbook"
	"github.com/mselser95/depth-arb/internal/rules"
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

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		cfg:    cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	err := a.setup(ctx, opts)
	if err != nil {
		a.closeResources()
		cancel()
		return nil, err
	}

	return a, nil
}

func (a *App) setup(ctx context.Context, opts *Options) error {
	cfg, logger := a.cfg, a.logger

	a.healthChecker = healthprobe.New(healthprobe.WithStaleAfter(cfg.ReadyStaleAfter))

	var err error
	a.cache, err = setupCache(cfg, logger)
	if err != nil {
		return fmt.Errorf("setup cache: %w", err)
	}

	a.redis, err = setupRedis(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("setup redis: %w", err)
	}

	client := binance.NewClient(binance.ClientConfig{
		BaseURL:    cfg.BinanceRESTURL,
		Timeout:    cfg.BinanceTimeout,
		DepthLimit: cfg.DepthLimit,
		Logger:     logger,
	})
	symbols := binance.NewCachedClient(client, a.cache, cfg.ExchangeInfoTTL)

	// Streamed prices first, REST ticker as the fallback.
	var prices []binance.PriceSource
	if cfg.PriceStream {
		a.wsManager = setupWebSocketManager(cfg, logger)
		a.priceStream = binance.NewPriceStream(a.wsManager, cfg.PriceMaxAge, logger)
		prices = append(prices, a.priceStream)
	}
	prices = append(prices, client)
	a.state = binance.NewStateProvider(symbols, cfg.FiatExclusion, logger, prices...)

	a.books = orderbook.New(&orderbook.Config{
		Source:       client,
		Timeout:      cfg.DepthFetchTimeout,
		MaxSnapshots: cfg.OrderbookRetained,
		Logger:       logger,
	})

	a.validator = NewValidator(cfg, logger, a.books)

	source, err := setupCycleSource(cfg, logger, a.redis, opts)
	if err != nil {
		return fmt.Errorf("setup cycle source: %w", err)
	}

	a.storage, err = setupStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("setup storage: %w", err)
	}

	a.watchlist = watchlist.New()
	a.selector = setupSelector(cfg, logger, a, source)

	a.httpServer = httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: a.healthChecker,
		Books:         a.books,
		Watchlist:     a.watchlist,
		Pending:       a.selector,
	})

	return nil
}

// NewValidator builds the depth-aware cycle validator from configuration.
func NewValidator(cfg *config.Config, logger *zap.Logger, fetcher arbitrage.DepthFetcher) *arbitrage.Validator {
	return arbitrage.NewValidator(arbitrage.Config{
		AnchorAssets: cfg.AnchorAssets,
		StableAssets: cfg.StableAssets,
		USDBudget:    cfg.USDBudget,
		QuoteAsset:   cfg.QuoteAsset,
		Logger:       logger,
	}, fetcher, rules.NewFilterValidator())
}

func setupCache(cfg *config.Config, logger *zap.Logger) (*cache.RistrettoCache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		Name:        "exchange",
		NumCounters: cfg.CacheMaxItems * 10, // 10x expected max items
		MaxCost:     cfg.CacheMaxItems,
		BufferItems: 64,
		Logger:      logger,
	})
}

// NewRedisClient connects to Redis and pings it.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	err := client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}

	return client, nil
}

func setupRedis(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		logger.Info("redis-disabled")
		return nil, nil
	}

	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("redis-connected", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	return client, nil
}

func setupWebSocketManager(cfg *config.Config, logger *zap.Logger) *websocket.Manager {
	return websocket.New(websocket.Config{
		URL:                   cfg.BinanceWSURL,
		DialTimeout:           cfg.WSDialTimeout,
		PongTimeout:           cfg.WSPongTimeout,
		PingInterval:          cfg.WSPingInterval,
		ReconnectInitialDelay: cfg.WSReconnectInitialDelay,
		ReconnectMaxDelay:     cfg.WSReconnectMaxDelay,
		ReconnectBackoffMult:  cfg.WSReconnectBackoffMult,
		MessageBufferSize:     cfg.WSMessageBufferSize,
		Logger:                logger,
	})
}

func setupCycleSource(cfg *config.Config, logger *zap.Logger, rdb *redis.Client, opts *Options) (cycles.Source, error) {
	var source cycles.Source

	switch cfg.CyclesSource {
	case config.CyclesFile:
		source = cycles.NewFileSource(cfg.CyclesFile)
	case config.CyclesRedis:
		if rdb == nil {
			return nil, fmt.Errorf("cycle source redis needs REDIS_ADDR")
		}
		source = cycles.NewRedisSource(rdb, cfg.CyclesRedisKey)
	case config.CyclesStatic:
		source = cycles.NewStaticSource(opts.Cycles...)
	default:
		return nil, fmt.Errorf("unknown cycle source %q", cfg.CyclesSource)
	}

	logger.Info("cycle-source-configured", zap.String("source", cfg.CyclesSource))

	return cycles.NewFiltered(source, cfg.MaxCycleLength, logger), nil
}

// NewStorage builds the configured record sinks.
func NewStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	return setupStorage(ctx, cfg, logger)
}

func setupStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	sinks := make([]storage.Storage, 0, len(cfg.StorageModes))

	closeAll := func() {
		for _, s := range sinks {
			_ = s.Close()
		}
	}

	for _, mode := range cfg.StorageModes {
		switch mode {
		case config.StorageConsole:
			sinks = append(sinks, storage.NewConsoleStorage(logger))
		case config.StorageCSV:
			csvStorage, err := storage.NewCSVStorage(cfg.CSVPath, logger)
			if err != nil {
				closeAll()
				return nil, fmt.Errorf("create csv storage: %w", err)
			}
			sinks = append(sinks, csvStorage)
		case config.StoragePostgres:
			pgStorage, err := storage.NewPostgresStorage(ctx, &storage.PostgresConfig{
				Host:     cfg.PostgresHost,
				Port:     cfg.PostgresPort,
				User:     cfg.PostgresUser,
				Password: cfg.PostgresPass,
				Database: cfg.PostgresDB,
				SSLMode:  cfg.PostgresSSL,
				Logger:   logger,
			})
			if err != nil {
				closeAll()
				return nil, fmt.Errorf("create postgres storage: %w", err)
			}
			sinks = append(sinks, pgStorage)
		default:
			closeAll()
			return nil, fmt.Errorf("unknown storage mode %q", mode)
		}
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return storage.NewMultiStorage(sinks...), nil
}

func setupSelector(cfg *config.Config, logger *zap.Logger, a *App, source cycles.Source) *selector.Selector {
	opts := []selector.Option{
		selector.WithStorage(a.storage),
		selector.WithHeartbeat(a.healthChecker),
	}
	if a.redis != nil {
		opts = append(opts, selector.WithPublisher(
			watchlist.NewRedisPublisher(a.redis, cfg.WatchlistKey, cfg.WatchlistTTL)))
	}

	return selector.New(selector.Config{
		PollInterval:        cfg.PollInterval,
		UpdateInterval:      cfg.UpdateSymbolsInterval,
		MaxSymbols:          cfg.MaxSymbolsWatch,
		MinThreshold:        cfg.MinArbThreshold,
		IgnoreAssets:        cfg.IgnoreAssets,
		ExpansionQuotes:     cfg.ExpansionQuotes,
		RecordOpportunities: cfg.RecordOpportunities,
		Logger:              logger,
	}, a.state, source, a.validator, a.watchlist, opts...)
}
