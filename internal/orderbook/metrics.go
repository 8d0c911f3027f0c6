package orderbook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesTotal tracks depth fetches by book side and outcome.
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deptharb_orderbook_fetches_total",
			Help: "Total number of order-book depth fetches",
		},
		[]string{"book", "result"},
	)

	// FetchDurationSeconds tracks depth fetch latency by book side.
	FetchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deptharb_orderbook_fetch_duration_seconds",
			Help:    "Latency of one order-book depth fetch",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"book"},
	)

	// LevelsPerFetch tracks how many levels a fetch returned.
	LevelsPerFetch = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "deptharb_orderbook_levels_per_fetch",
		Help:    "Number of price levels returned per depth fetch",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 500, 1000, 5000},
	})

	// SnapshotsTracked tracks the number of retained book sides.
	SnapshotsTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "deptharb_orderbook_snapshots_tracked",
		Help: "Number of order-book sides retained in memory",
	})
)
