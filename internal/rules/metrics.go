package rules

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RejectionsTotal tracks quantities rejected by exchange filters.
var RejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "deptharb_quantity_rejections_total",
		Help: "Total number of leg quantities rejected by exchange trading filters",
	},
	[]string{"filter"},
)
