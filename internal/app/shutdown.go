package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)

	// Cancel context to signal all components
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	var errs []error

	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
		errs = append(errs, err)
	}

	err = a.closeResources()
	if err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application-shutdown-complete")

	return errors.Join(errs...)
}

// closeResources releases whatever setup managed to create.
func (a *App) closeResources() error {
	var errs []error

	if a.storage != nil {
		err := a.storage.Close()
		if err != nil {
			a.logger.Error("storage-close-error", zap.Error(err))
			errs = append(errs, err)
		}
		a.storage = nil
	}

	if a.wsManager != nil {
		err := a.wsManager.Close()
		if err != nil {
			a.logger.Error("websocket-manager-close-error", zap.Error(err))
			errs = append(errs, err)
		}
		a.wsManager = nil
	}

	if a.redis != nil {
		err := a.redis.Close()
		if err != nil {
			a.logger.Error("redis-close-error", zap.Error(err))
			errs = append(errs, err)
		}
		a.redis = nil
	}

	if a.cache != nil {
		a.cache.Close()
		a.cache = nil
	}

	return errors.Join(errs...)
}
