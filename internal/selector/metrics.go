package selector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicksTotal tracks fast-cadence passes.
	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deptharb_selector_ticks_total",
		Help: "Total number of selector ticks",
	})

	// TickErrorsTotal tracks ticks that failed before evaluating cycles.
	TickErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deptharb_selector_tick_errors_total",
		Help: "Total number of selector ticks that failed",
	})

	// TickDurationSeconds tracks the duration of one tick.
	TickDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "deptharb_selector_tick_duration_seconds",
		Help:    "Duration of one selector tick",
		Buckets: prometheus.DefBuckets,
	})

	// ProfitableCyclesTotal tracks cycles at or above the threshold.
	ProfitableCyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deptharb_profitable_cycles_total",
		Help: "Total number of cycles whose realized rate reached the threshold",
	})

	// RecordErrorsTotal tracks failed record writes.
	RecordErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deptharb_record_errors_total",
		Help: "Total number of profitable cycles that failed to persist",
	})

	// PendingAssets tracks the size of the accumulated asset set.
	PendingAssets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "deptharb_selector_pending_assets",
		Help: "Number of assets accumulated since the last watch-list swap",
	})
)
