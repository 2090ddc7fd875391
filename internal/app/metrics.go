package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CycleMetrics holds the Prometheus collectors updated by each poll cycle.
type CycleMetrics struct {
	Cycles           prometheus.Counter
	FetchFailures    prometheus.Counter
	DeliveryFailures prometheus.Counter
	LastPrice        *prometheus.GaugeVec
}

// NewCycleMetrics creates the cycle collectors and registers them with reg.
// A nil reg leaves the collectors unregistered.
func NewCycleMetrics(reg prometheus.Registerer) *CycleMetrics {
	factory := promauto.With(reg)

	return &CycleMetrics{
		Cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flightwatch",
			Name:      "cycles_total",
			Help:      "Number of completed poll cycles.",
		}),
		FetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flightwatch",
			Name:      "fetch_failures_total",
			Help:      "Number of poll cycles whose fare fetch failed.",
		}),
		DeliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "flightwatch",
			Name:      "delivery_failures_total",
			Help:      "Number of notifications the mail transport did not accept.",
		}),
		LastPrice: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "flightwatch",
			Name:      "last_price",
			Help:      "Cheapest fare observed by the most recent successful fetch.",
		}, []string{"origin", "destination", "currency"}),
	}
}
