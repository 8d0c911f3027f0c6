// Package selector runs the adaptive symbol selection loop.
//
// Every fast tick it validates candidate cycles against a fresh exchange
// snapshot and accumulates the assets of profitable ones into a bounded set.
// On the slow cadence, once that set is full, the set is expanded into tradable
// symbols and swapped into the watch-list.
package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mselser95/depth-arb/internal/arbitrage"
	"github.com/mselser95/depth-arb/internal/cycles"
	"github.com/mselser95/depth-arb/internal/exchange"
	"github.com/mselser95/depth-arb/internal/storage"
	"github.com/mselser95/depth-arb/internal/watchlist"
	"go.uber.org/zap"
)

// StateProvider returns a fresh exchange snapshot.
type StateProvider interface {
	Snapshot(ctx context.Context) (*exchange.Snapshot, error)
}

// Evaluator validates one cycle against exchange state.
type Evaluator interface {
	Validate(ctx context.Context, cycle arbitrage.Cycle, state arbitrage.MarketState) (*arbitrage.Evaluation, error)
}

// Heartbeat is notified after every completed tick.
type Heartbeat interface {
	MarkTick()
}

// Config holds selector configuration.
type Config struct {
	PollInterval        time.Duration // fast tick
	UpdateInterval      time.Duration // slow tick, watch-list refresh
	MaxSymbols          int           // size of the accumulated asset set
	MinThreshold        float64       // realized rate a cycle must reach
	IgnoreAssets        []string      // never accumulated, e.g. BTC and USDT
	ExpansionQuotes     []string      // quotes each asset expands to, default USDT and BTC
	RecordOpportunities bool
	Logger              *zap.Logger
}

// Selector is the adaptive symbol selection loop.
type Selector struct {
	cfg       Config
	ignore    map[string]bool
	state     StateProvider
	source    cycles.Source
	evaluator Evaluator
	storage   storage.Storage
	watchlist *watchlist.Watchlist
	publisher watchlist.Publisher
	heartbeat Heartbeat
	logger    *zap.Logger
	now       func() time.Time

	mu         sync.Mutex // guards pending, pendingSet, deadline
	pending    []string
	pendingSet map[string]bool
	deadline   time.Time
}

// Option customizes a Selector.
type Option func(*Selector)

// WithStorage records profitable cycles to s when RecordOpportunities is set.
func WithStorage(s storage.Storage) Option {
	return func(sel *Selector) { sel.storage = s }
}

// WithPublisher shares every watch-list swap through p.
func WithPublisher(p watchlist.Publisher) Option {
	return func(sel *Selector) { sel.publisher = p }
}

// WithHeartbeat reports completed ticks to h.
func WithHeartbeat(h Heartbeat) Option {
	return func(sel *Selector) { sel.heartbeat = h }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(sel *Selector) { sel.now = now }
}

// New creates a selector. The first swap can happen one UpdateInterval after New.
func New(cfg Config, state StateProvider, source cycles.Source, evaluator Evaluator, wl *watchlist.Watchlist, opts ...Option) *Selector {
	if len(cfg.ExpansionQuotes) == 0 {
		cfg.ExpansionQuotes = []string{"USDT", "BTC"}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ignore := make(map[string]bool, len(cfg.IgnoreAssets))
	for _, a := range cfg.IgnoreAssets {
		ignore[strings.ToUpper(a)] = true
	}

	s := &Selector{
		cfg:        cfg,
		ignore:     ignore,
		state:      state,
		source:     source,
		evaluator:  evaluator,
		watchlist:  wl,
		logger:     logger,
		now:        time.Now,
		pendingSet: make(map[string]bool, cfg.MaxSymbols),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.deadline = s.now().Add(cfg.UpdateInterval)
	return s
}

// Run ticks every PollInterval until ctx is cancelled. Tick errors are logged
// and the loop continues.
func (s *Selector) Run(ctx context.Context) error {
	s.logger.Info("selector-starting",
		zap.Duration("poll-interval", s.cfg.PollInterval),
		zap.Duration("update-interval", s.cfg.UpdateInterval),
		zap.Int("max-symbols", s.cfg.MaxSymbols),
		zap.Float64("min-threshold", s.cfg.MinThreshold))

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		err := s.Tick(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			TickErrorsTotal.Inc()
			s.logger.Warn("selector-tick-failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("selector-stopping")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick runs one fast-cadence pass and, when due, the slow-cadence swap.
func (s *Selector) Tick(ctx context.Context) error {
	start := time.Now()
	defer func() {
		TickDurationSeconds.Observe(time.Since(start).Seconds())
	}()
	TicksTotal.Inc()

	snap, err := s.state.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot exchange state: %w", err)
	}

	candidates, err := s.source.Cycles(ctx)
	if err != nil {
		return fmt.Errorf("load candidate cycles: %w", err)
	}

	for _, cycle := range candidates {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		eval, err := s.evaluator.Validate(ctx, cycle, snap)
		if err != nil {
			continue
		}
		if eval.RealRate < s.cfg.MinThreshold {
			continue
		}

		s.onProfitable(ctx, eval)
	}

	s.maybeSwap(ctx)

	if s.heartbeat != nil {
		s.heartbeat.MarkTick()
	}
	return nil
}

func (s *Selector) onProfitable(ctx context.Context, eval *arbitrage.Evaluation) {
	ProfitableCyclesTotal.Inc()
	surface := arbitrage.SurfaceRate(eval.Cycle)

	s.logger.Info("profitable-cycle",
		zap.String("cycle", eval.Cycle.String()),
		zap.Float64("real-rate", eval.RealRate),
		zap.Float64("surface-rate", surface),
		zap.Float64("budget", eval.Budget),
		zap.Strings("symbols", eval.Symbols))

	if s.cfg.RecordOpportunities && s.storage != nil {
		rec := arbitrage.NewRecord(eval.Cycle, eval.RealRate, surface, s.now())
		err := s.storage.StoreRecord(ctx, rec)
		if err != nil {
			RecordErrorsTotal.Inc()
			s.logger.Error("record-store-failed",
				zap.String("cycle", eval.Cycle.String()),
				zap.Error(err))
		}
	}

	for _, edge := range eval.Cycle {
		s.accumulate(edge.From)
		s.accumulate(edge.To)
	}
}

func (s *Selector) accumulate(asset string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) >= s.cfg.MaxSymbols {
		return
	}
	if s.ignore[asset] || s.pendingSet[asset] {
		return
	}

	s.pendingSet[asset] = true
	s.pending = append(s.pending, asset)
	PendingAssets.Set(float64(len(s.pending)))
}

// maybeSwap replaces the watch-list only when the deadline has passed and the
// asset set is exactly full. A partial set keeps accumulating past the deadline.
func (s *Selector) maybeSwap(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	if now.Before(s.deadline) || len(s.pending) != s.cfg.MaxSymbols {
		s.mu.Unlock()
		return
	}
	assets := append([]string(nil), s.pending...)
	s.pending = s.pending[:0]
	clear(s.pendingSet)
	s.deadline = now.Add(s.cfg.UpdateInterval)
	s.mu.Unlock()

	PendingAssets.Set(0)

	symbols := Expand(assets, s.cfg.ExpansionQuotes)
	s.watchlist.Replace(symbols)

	s.logger.Info("watchlist-swapped",
		zap.Strings("assets", assets),
		zap.Int("symbols", len(symbols)))

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, symbols)
		if err != nil {
			s.logger.Warn("watchlist-publish-failed", zap.Error(err))
		}
	}
}

// Pending returns a copy of the assets accumulated since the last swap.
func (s *Selector) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.pending))
	copy(out, s.pending)
	return out
}

// Expand turns each asset into one symbol per quote, preserving asset order.
func Expand(assets []string, quotes []string) []string {
	symbols := make([]string, 0, len(assets)*len(quotes))
	for _, asset := range assets {
		for _, quote := range quotes {
			symbols = append(symbols, asset+quote)
		}
	}
	return symbols
}
