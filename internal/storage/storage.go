package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mselser95/depth-arb/internal/arbitrage"
)

// Storage is the interface for persisting profitable cycles.
type Storage interface {
	// StoreRecord appends one record.
	StoreRecord(ctx context.Context, rec *arbitrage.Record) error

	// Close releases the underlying resources.
	Close() error
}

// MultiStorage fans a record out to several sinks.
type MultiStorage struct {
	sinks []Storage
}

// NewMultiStorage creates a storage writing to every sink in order.
func NewMultiStorage(sinks ...Storage) *MultiStorage {
	return &MultiStorage{sinks: sinks}
}

// StoreRecord writes rec to every sink. All sinks are attempted; the joined
// error of the failing ones is returned.
func (m *MultiStorage) StoreRecord(ctx context.Context, rec *arbitrage.Record) error {
	var errs []error
	for i, sink := range m.sinks {
		err := sink.StoreRecord(ctx, rec)
		if err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink.
func (m *MultiStorage) Close() error {
	var errs []error
	for _, sink := range m.sinks {
		err := sink.Close()
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
