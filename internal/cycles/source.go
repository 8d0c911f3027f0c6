// Package cycles supplies candidate arbitrage cycles produced by an external
// cycle search.
package cycles

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mselser95/depth-arb/internal/arbitrage"
	"go.uber.org/zap"
)

// Source yields the current candidate cycles.
type Source interface {
	Cycles(ctx context.Context) ([]arbitrage.Cycle, error)
}

// StaticSource always returns the same cycles.
type StaticSource struct {
	cycles []arbitrage.Cycle
}

// NewStaticSource creates a source over a fixed cycle set.
func NewStaticSource(cycles ...arbitrage.Cycle) *StaticSource {
	return &StaticSource{cycles: cycles}
}

// Cycles returns the fixed cycle set.
func (s *StaticSource) Cycles(_ context.Context) ([]arbitrage.Cycle, error) {
	out := make([]arbitrage.Cycle, len(s.cycles))
	copy(out, s.cycles)
	return out, nil
}

// Filtered drops malformed cycles and cycles longer than MaxLength from an
// underlying source.
type Filtered struct {
	source    Source
	maxLength int
	logger    *zap.Logger
}

// NewFiltered wraps source. A non-positive maxLength disables the length check.
func NewFiltered(source Source, maxLength int, logger *zap.Logger) *Filtered {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filtered{source: source, maxLength: maxLength, logger: logger}
}

// Cycles returns the valid cycles of the underlying source.
func (f *Filtered) Cycles(ctx context.Context) ([]arbitrage.Cycle, error) {
	all, err := f.source.Cycles(ctx)
	if err != nil {
		return nil, err
	}

	kept := make([]arbitrage.Cycle, 0, len(all))
	for _, cycle := range all {
		if f.maxLength > 0 && len(cycle) > f.maxLength {
			DroppedTotal.WithLabelValues("too_long").Inc()
			continue
		}
		err := cycle.Validate()
		if err != nil {
			DroppedTotal.WithLabelValues("invalid").Inc()
			f.logger.Debug("cycle-dropped", zap.String("cycle", cycle.String()), zap.Error(err))
			continue
		}
		kept = append(kept, cycle)
	}

	LoadedTotal.Add(float64(len(kept)))
	return kept, nil
}

// Decode parses a JSON document holding a list of cycles, each a list of
// {"from","to","weight"} edges.
func Decode(data []byte) ([]arbitrage.Cycle, error) {
	var cycles []arbitrage.Cycle
	err := json.Unmarshal(data, &cycles)
	if err != nil {
		return nil, fmt.Errorf("decode cycles: %w", err)
	}
	return cycles, nil
}
