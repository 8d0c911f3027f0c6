// Package watchlist holds the symbols the selector currently wants watched.
package watchlist

import (
	"sync"
	"time"
)

// Watchlist is a thread-safe ordered list of symbols. Writers replace it as a
// whole; readers get a copy.
type Watchlist struct {
	mu        sync.RWMutex
	symbols   []string
	updatedAt time.Time
	swaps     uint64
}

// New creates an empty watch-list.
func New() *Watchlist {
	return &Watchlist{}
}

// Replace clears the list and installs symbols in the given order.
func (w *Watchlist) Replace(symbols []string) {
	next := make([]string, len(symbols))
	copy(next, symbols)

	w.mu.Lock()
	w.symbols = next
	w.updatedAt = time.Now()
	w.swaps++
	w.mu.Unlock()

	Size.Set(float64(len(next)))
	SwapsTotal.Inc()
}

// Snapshot returns a copy of the current symbols.
func (w *Watchlist) Snapshot() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]string, len(w.symbols))
	copy(out, w.symbols)
	return out
}

// Len returns the number of symbols in the list.
func (w *Watchlist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.symbols)
}

// UpdatedAt returns the time of the last Replace, zero if never replaced.
func (w *Watchlist) UpdatedAt() time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.updatedAt
}

// Swaps returns how many times the list has been replaced.
func (w *Watchlist) Swaps() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.swaps
}
