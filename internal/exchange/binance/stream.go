package binance

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/depth-arb/pkg/types"
	"go.uber.org/zap"
)

// MiniTickerStream is the all-market mini ticker stream name.
const MiniTickerStream = "!miniTicker@arr"

// DefaultStreamURL is the public spot stream endpoint.
const DefaultStreamURL = "wss://stream.binance.com:9443/ws"

// ErrStalePrices is returned when the stream has not delivered recently.
var ErrStalePrices = errors.New("stream prices are stale")

// FrameSource delivers raw stream frames.
type FrameSource interface {
	MessageChan() <-chan []byte
}

// PriceStream keeps last prices up to date from the mini ticker stream.
type PriceStream struct {
	frames FrameSource
	maxAge time.Duration
	logger *zap.Logger

	mu         sync.RWMutex
	prices     map[string]float64
	lastUpdate time.Time
}

// NewPriceStream creates a price stream. Prices older than maxAge are stale.
func NewPriceStream(frames FrameSource, maxAge time.Duration, logger *zap.Logger) *PriceStream {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceStream{
		frames: frames,
		maxAge: maxAge,
		logger: logger,
		prices: make(map[string]float64),
	}
}

// Run applies frames until ctx is cancelled or the frame channel closes.
func (s *PriceStream) Run(ctx context.Context) error {
	ch := s.frames.MessageChan()
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-ch:
			if !ok {
				s.logger.Info("price-stream-closed")
				return nil
			}
			s.Apply(frame)
		}
	}
}

// Apply decodes one frame and updates prices. Non-ticker frames such as
// subscription acknowledgements are ignored.
func (s *PriceStream) Apply(frame []byte) int {
	var tickers []types.MiniTicker
	err := json.Unmarshal(frame, &tickers)
	if err != nil {
		s.logger.Debug("price-stream-frame-ignored", zap.Int("bytes", len(frame)))
		return 0
	}

	updates := make(map[string]float64, len(tickers))
	for _, t := range tickers {
		p, err := strconv.ParseFloat(t.Close, 64)
		if err != nil || p <= 0 {
			continue
		}
		updates[t.Symbol] = p
	}
	if len(updates) == 0 {
		return 0
	}

	s.mu.Lock()
	for sym, p := range updates {
		s.prices[sym] = p
	}
	s.lastUpdate = time.Now()
	s.mu.Unlock()

	StreamPriceUpdatesTotal.Add(float64(len(updates)))
	return len(updates)
}

// Prices returns a copy of the streamed prices, or ErrStalePrices when
// nothing arrived within maxAge.
func (s *PriceStream) Prices(_ context.Context) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastUpdate.IsZero() || time.Since(s.lastUpdate) > s.maxAge {
		return nil, ErrStalePrices
	}

	out := make(map[string]float64, len(s.prices))
	for sym, p := range s.prices {
		out[sym] = p
	}
	return out, nil
}
