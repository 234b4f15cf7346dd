package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ClassificationsTotal counts image-classification attempts by outcome
	// (success, degraded, error).
	ClassificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reportify",
		Subsystem: "classifier",
		Name:      "classifications_total",
		Help:      "Total image classification attempts, labeled by outcome.",
	}, []string{"outcome"})

	// GeocodeLookupsTotal counts reverse-geocoding lookups by outcome
	// (cache_hit, provider_ok, provider_error).
	GeocodeLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reportify",
		Subsystem: "geocoder",
		Name:      "lookups_total",
		Help:      "Total reverse-geocoding lookups, labeled by outcome.",
	}, []string{"outcome"})

	// ReportsCreatedTotal counts persisted reports by type.
	ReportsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reportify",
		Subsystem: "reports",
		Name:      "created_total",
		Help:      "Total reports created, labeled by report type.",
	}, []string{"type"})

	// StatusTransitionsTotal counts moderator status transitions by target
	// status.
	StatusTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reportify",
		Subsystem: "reports",
		Name:      "status_transitions_total",
		Help:      "Total report status transitions, labeled by new status.",
	}, []string{"status"})

	// ProviderRequestDuration is the wall time of external provider calls.
	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reportify",
		Subsystem: "providers",
		Name:      "request_duration_seconds",
		Help:      "Duration of external provider requests, labeled by provider.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"provider"})
)

// Register registers reportify metrics with the default Prometheus
// registry. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ClassificationsTotal,
			GeocodeLookupsTotal,
			ReportsCreatedTotal,
			StatusTransitionsTotal,
			ProviderRequestDuration,
		)
	})
}
