package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/mselser95/depth-arb/internal/arbitrage"
	"github.com/mselser95/depth-arb/internal/orderbook"
	"go.uber.org/zap"
)

// BookStore exposes the last fetched order-book sides.
type BookStore interface {
	GetSnapshot(symbol string, book arbitrage.BookType) (*orderbook.Snapshot, bool)
	Symbols() []string
}

// OrderbookHandler handles HTTP requests for orderbook data.
type OrderbookHandler struct {
	books  BookStore
	logger *zap.Logger
}

// NewOrderbookHandler creates a new orderbook handler.
func NewOrderbookHandler(books BookStore, logger *zap.Logger) *OrderbookHandler {
	return &OrderbookHandler{
		books:  books,
		logger: logger,
	}
}

// SideResponse is one book side of a symbol.
type SideResponse struct {
	BestPrice float64           `json:"best_price"`
	Depth     float64           `json:"depth"`
	FetchedAt string            `json:"fetched_at"`
	Levels    []arbitrage.Level `json:"levels"`
}

// OrderbookResponse represents the HTTP response for orderbook data.
type OrderbookResponse struct {
	Symbol string        `json:"symbol"`
	Asks   *SideResponse `json:"asks,omitempty"`
	Bids   *SideResponse `json:"bids,omitempty"`
}

// SymbolsResponse lists the symbols with a retained book.
type SymbolsResponse struct {
	Symbols []string `json:"symbols"`
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleSymbols handles GET /api/orderbook.
func (h *OrderbookHandler) HandleSymbols(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, SymbolsResponse{Symbols: h.books.Symbols()})
}

// HandleOrderbook handles GET /api/orderbook/{symbol}[?book=asks|bids].
func (h *OrderbookHandler) HandleOrderbook(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	if symbol == "" {
		writeError(w, h.logger, "missing symbol", http.StatusBadRequest)
		return
	}

	sides := []arbitrage.BookType{arbitrage.Asks, arbitrage.Bids}
	if b := r.URL.Query().Get("book"); b != "" {
		switch arbitrage.BookType(strings.ToUpper(b)) {
		case arbitrage.Asks:
			sides = []arbitrage.BookType{arbitrage.Asks}
		case arbitrage.Bids:
			sides = []arbitrage.BookType{arbitrage.Bids}
		default:
			writeError(w, h.logger, "book must be asks or bids", http.StatusBadRequest)
			return
		}
	}

	h.logger.Debug("orderbook-request-received", zap.String("symbol", symbol))

	resp := OrderbookResponse{Symbol: symbol}
	found := false
	for _, side := range sides {
		snap, ok := h.books.GetSnapshot(symbol, side)
		if !ok {
			continue
		}
		found = true
		sr := &SideResponse{
			BestPrice: snap.BestPrice(),
			Depth:     snap.Depth(),
			FetchedAt: snap.FetchedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			Levels:    snap.Levels,
		}
		if side == arbitrage.Asks {
			resp.Asks = sr
		} else {
			resp.Bids = sr
		}
	}

	if !found {
		writeError(w, h.logger, "no book fetched for symbol", http.StatusNotFound)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, logger *zap.Logger, message string, statusCode int) {
	writeJSON(w, logger, statusCode, ErrorResponse{Error: message})
}
