package httpserver

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WatchlistReader exposes the active watchlist.
type WatchlistReader interface {
	Snapshot() []string
	UpdatedAt() time.Time
	Swaps() uint64
}

// PendingReader exposes the assets gathered toward the next swap.
type PendingReader interface {
	Pending() []string
}

// WatchlistHandler serves the active watchlist.
type WatchlistHandler struct {
	watchlist WatchlistReader
	pending   PendingReader
	logger    *zap.Logger
}

// NewWatchlistHandler creates a new watchlist handler. pending may be nil.
func NewWatchlistHandler(wl WatchlistReader, pending PendingReader, logger *zap.Logger) *WatchlistHandler {
	return &WatchlistHandler{watchlist: wl, pending: pending, logger: logger}
}

// WatchlistResponse represents the HTTP response for the watchlist.
type WatchlistResponse struct {
	Symbols   []string `json:"symbols"`
	UpdatedAt string   `json:"updated_at,omitempty"`
	Swaps     uint64   `json:"swaps"`
	Pending   []string `json:"pending,omitempty"`
}

// HandleWatchlist handles GET /api/watchlist.
func (h *WatchlistHandler) HandleWatchlist(w http.ResponseWriter, r *http.Request) {
	resp := WatchlistResponse{
		Symbols: h.watchlist.Snapshot(),
		Swaps:   h.watchlist.Swaps(),
	}
	if resp.Symbols == nil {
		resp.Symbols = []string{}
	}
	if at := h.watchlist.UpdatedAt(); !at.IsZero() {
		resp.UpdatedAt = at.UTC().Format(time.RFC3339)
	}
	if h.pending != nil {
		resp.Pending = h.pending.Pending()
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}
