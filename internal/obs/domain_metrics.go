package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PriceCalculationsTotal counts price breakdown calculations by outcome.
	PriceCalculationsTotal *prometheus.CounterVec
	// PriceCalculationDuration records calculation latency in milliseconds, VAT lookup included.
	PriceCalculationDuration prometheus.Histogram
	// VatFallbackTotal counts requests priced with the default country instead of the customer's.
	VatFallbackTotal *prometheus.CounterVec
	// VatCacheLookupsTotal counts VAT rate cache lookups by result.
	VatCacheLookupsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PriceCalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_calculations_total",
			Help:      "Count of price breakdown calculations by outcome.",
		}, []string{"result"})
		PriceCalculationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "price_calculation_duration_ms",
			Help:      "Latency of price breakdown calculations in milliseconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		})
		VatFallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vat_fallback_total",
			Help:      "Count of prices computed with the default country after a fallback.",
		}, []string{"reason"})
		VatCacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vat_cache_lookups_total",
			Help:      "Count of VAT rate cache lookups by result.",
		}, []string{"result"})

		mustRegisterCollector(reg, PriceCalculationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PriceCalculationsTotal = v
			}
		})
		mustRegisterCollector(reg, PriceCalculationDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				PriceCalculationDuration = v
			}
		})
		mustRegisterCollector(reg, VatFallbackTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				VatFallbackTotal = v
			}
		})
		mustRegisterCollector(reg, VatCacheLookupsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				VatCacheLookupsTotal = v
			}
		})
	})
}

// ObservePriceCalculation records the outcome of a calculation when metrics are registered.
func ObservePriceCalculation(result string, millis float64) {
	if PriceCalculationsTotal != nil {
		PriceCalculationsTotal.WithLabelValues(result).Inc()
	}
	if PriceCalculationDuration != nil {
		PriceCalculationDuration.Observe(millis)
	}
}

// IncVatFallback records a default-country fallback.
func IncVatFallback(reason string) {
	if VatFallbackTotal != nil {
		VatFallbackTotal.WithLabelValues(reason).Inc()
	}
}

// IncVatCacheLookup records a VAT cache hit or miss.
func IncVatCacheLookup(result string) {
	if VatCacheLookupsTotal != nil {
		VatCacheLookupsTotal.WithLabelValues(result).Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register metric: %w", err))
	}
}
