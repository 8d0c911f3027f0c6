package arbitrage

import (
	"fmt"
	"math"
	"strings"
)

// Edge is one directed leg of a candidate cycle as produced by the cycle search.
// Weight is the search's log-rate and is only used to derive the surface rate.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// Cycle is an ordered, closed sequence of edges.
type Cycle []Edge

// Validate checks that the cycle is non-empty, has no blank assets and closes on itself.
func (c Cycle) Validate() error {
	if len(c) == 0 {
		return ErrEmptyCycle
	}

	for i, edge := range c {
		if edge.From == "" || edge.To == "" {
			return fmt.Errorf("leg %d: %w", i, ErrBlankAsset)
		}
		next := c[(i+1)%len(c)]
		if edge.To != next.From {
			return fmt.Errorf("leg %d ends at %s but leg %d starts at %s: %w",
				i, edge.To, (i+1)%len(c), next.From, ErrOpenCycle)
		}
	}

	return nil
}

// Anchor returns the asset the cycle starts and ends in.
func (c Cycle) Anchor() string {
	if len(c) == 0 {
		return ""
	}
	return c[0].From
}

// Assets returns the distinct assets touched by the cycle in first-seen order.
func (c Cycle) Assets() []string {
	seen := make(map[string]bool, len(c)+1)
	assets := make([]string, 0, len(c)+1)

	for _, edge := range c {
		for _, asset := range []string{edge.From, edge.To} {
			if seen[asset] {
				continue
			}
			seen[asset] = true
			assets = append(assets, asset)
		}
	}

	return assets
}

// String renders the cycle as "A->B->C->A".
func (c Cycle) String() string {
	if len(c) == 0 {
		return ""
	}

	parts := make([]string, 0, len(c)+1)
	for _, edge := range c {
		parts = append(parts, edge.From)
	}
	parts = append(parts, c[len(c)-1].To)

	return strings.Join(parts, "->")
}

// CycleFromAssets builds a zero-weight cycle from a closed asset path such as
// ["BTC", "ETH", "USDT", "BTC"].
func CycleFromAssets(assets []string) (Cycle, error) {
	if len(assets) < 3 {
		return nil, fmt.Errorf("need at least 3 assets, got %d: %w", len(assets), ErrEmptyCycle)
	}

	cycle := make(Cycle, 0, len(assets)-1)
	for i := 0; i < len(assets)-1; i++ {
		cycle = append(cycle, Edge{
			From: strings.ToUpper(assets[i]),
			To:   strings.ToUpper(assets[i+1]),
		})
	}

	err := cycle.Validate()
	if err != nil {
		return nil, err
	}

	return cycle, nil
}

// SurfaceRate is the theoretical rate implied purely by the edge weights, minus one.
func SurfaceRate(cycle Cycle) float64 {
	rate := 1.0
	for _, edge := range cycle {
		rate *= math.Exp(-edge.Weight)
	}
	return rate - 1.0
}
