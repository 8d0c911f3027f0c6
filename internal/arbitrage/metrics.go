package arbitrage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesEvaluatedTotal tracks cycles submitted to the validator.
	CyclesEvaluatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deptharb_cycles_evaluated_total",
		Help: "Total number of candidate cycles evaluated against order-book depth",
	})

	// CyclesRejectedTotal tracks rejected cycles by reason.
	CyclesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deptharb_cycles_rejected_total",
			Help: "Total number of candidate cycles rejected",
		},
		[]string{"reason"},
	)

	// RealRate tracks the realized rate of cycles that passed validation.
	RealRate = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "deptharb_cycle_real_rate",
		Help:    "Realized depth-aware rate of validated cycles",
		Buckets: []float64{0.95, 0.98, 0.99, 0.995, 1.0, 1.005, 1.01, 1.015, 1.02, 1.05},
	})

	// EvaluationDurationSeconds tracks end-to-end validation latency per cycle.
	EvaluationDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "deptharb_cycle_evaluation_duration_seconds",
		Help:    "Duration of one cycle validation including depth fetches",
		Buckets: prometheus.DefBuckets,
	})

	// FanOutDurationSeconds tracks the joined depth fetch latency per cycle.
	FanOutDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "deptharb_depth_fanout_duration_seconds",
		Help:    "Wall time of the concurrent per-leg order-book fetch",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})
)
