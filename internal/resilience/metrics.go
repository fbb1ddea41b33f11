package resilience

import "github.com/prometheus/client_golang/prometheus"

// Breaker collectors live on the default registry, next to the domain metrics.
var (
	BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "toko",
		Subsystem: "breaker",
		Name:      "state",
		Help:      "Current breaker state per dependency: 0=closed, 1=open, 2=half-open.",
	}, []string{"target"})
	BreakerTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "toko",
		Subsystem: "breaker",
		Name:      "transitions_total",
		Help:      "Breaker state transitions per dependency.",
	}, []string{"target", "from", "to"})
)

func init() {
	prometheus.MustRegister(BreakerState, BreakerTransitions)
}
