package watchlist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Size tracks the current number of watched symbols.
	Size = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "deptharb_watchlist_size",
		Help: "Current number of symbols in the watch-list",
	})

	// SwapsTotal tracks watch-list replacements.
	SwapsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deptharb_watchlist_swaps_total",
		Help: "Total number of watch-list replacements",
	})

	// PublishErrorsTotal tracks failed publishes to the shared store.
	PublishErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deptharb_watchlist_publish_errors_total",
		Help: "Total number of failed watch-list publishes",
	})
)
