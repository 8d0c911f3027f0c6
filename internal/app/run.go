package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mselser95/depth-arb/internal/exchange/binance"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.Strings("anchor-assets", a.cfg.AnchorAssets),
		zap.Float64("min-arb-threshold", a.cfg.MinArbThreshold),
		zap.Float64("usd-budget", a.cfg.USDBudget),
		zap.Strings("storage-modes", a.cfg.StorageModes),
		zap.String("log-level", a.cfg.LogLevel))

	err := a.startStream()
	if err != nil {
		_ = a.Shutdown()
		return fmt.Errorf("start price stream: %w", err)
	}

	a.CheckAnchorPrices(a.ctx)

	g, gctx := errgroup.WithContext(a.ctx)

	g.Go(func() error {
		return a.httpServer.Start()
	})

	if a.priceStream != nil {
		g.Go(func() error {
			return a.priceStream.Run(gctx)
		})
	}

	g.Go(func() error {
		return a.selector.Run(gctx)
	})

	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.Bool("price-stream", a.priceStream != nil))

	a.waitForShutdown(gctx)

	err = a.Shutdown()
	if err != nil {
		a.logger.Error("shutdown-error", zap.Error(err))
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) startStream() error {
	if a.wsManager == nil {
		return nil
	}

	err := a.wsManager.Start()
	if err != nil {
		return err
	}

	return a.wsManager.Subscribe(a.ctx, []string{binance.MiniTickerStream})
}

// CheckAnchorPrices warns once for every anchor asset that cannot be priced
// in the quote asset. Cycles anchored there are rejected until it can.
func (a *App) CheckAnchorPrices(ctx context.Context) []string {
	snap, err := a.state.Snapshot(ctx)
	if err != nil {
		a.logger.Warn("anchor-price-check-skipped", zap.Error(err))
		return nil
	}

	missing := a.validator.MissingAnchorPrices(snap.Prices())
	for _, anchor := range missing {
		a.logger.Warn("anchor-price-missing",
			zap.String("anchor", anchor),
			zap.String("symbol", anchor+a.cfg.QuoteAsset))
	}
	return missing
}

// waitForShutdown blocks until a signal arrives or a component fails.
func (a *App) waitForShutdown(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-ctx.Done():
		a.logger.Info("context-cancelled")
	}
}
