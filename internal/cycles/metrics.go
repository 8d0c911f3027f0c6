package cycles

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoadedTotal tracks candidate cycles handed to the selector.
	LoadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deptharb_candidate_cycles_loaded_total",
		Help: "Total number of candidate cycles loaded from the cycle source",
	})

	// DroppedTotal tracks candidates discarded before validation.
	DroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deptharb_candidate_cycles_dropped_total",
			Help: "Total number of candidate cycles dropped before validation",
		},
		[]string{"reason"},
	)

	// LoadErrorsTotal tracks failed reads of the cycle source.
	LoadErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deptharb_candidate_cycles_load_errors_total",
			Help: "Total number of failed candidate cycle loads",
		},
		[]string{"source"},
	)
)
