package binance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks REST requests by endpoint and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deptharb_binance_requests_total",
			Help: "Total number of Binance REST requests",
		},
		[]string{"endpoint", "status"},
	)

	// RequestDurationSeconds tracks REST latency by endpoint.
	RequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deptharb_binance_request_duration_seconds",
			Help:    "Binance REST request latency",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"endpoint"},
	)

	// UsedWeight tracks the request weight reported by the API for the current minute.
	UsedWeight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "deptharb_binance_used_weight_1m",
		Help: "Request weight used in the current minute as reported by Binance",
	})

	// ExchangeInfoCacheHitsTotal tracks exchange info served from cache.
	ExchangeInfoCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deptharb_exchange_info_cache_hits_total",
		Help: "Total number of exchange info lookups served from cache",
	})

	// ExchangeInfoCacheMissesTotal tracks exchange info fetched from the API.
	ExchangeInfoCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deptharb_exchange_info_cache_misses_total",
		Help: "Total number of exchange info lookups that hit the API",
	})

	// StreamPriceUpdatesTotal tracks prices applied from the ticker stream.
	StreamPriceUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deptharb_stream_price_updates_total",
		Help: "Total number of symbol prices updated from the ticker stream",
	})

	// SnapshotSymbols tracks the number of symbols in the latest snapshot.
	SnapshotSymbols = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "deptharb_snapshot_symbols",
		Help: "Number of tradable symbols in the latest exchange snapshot",
	})
)
