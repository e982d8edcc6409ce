package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "spin_location"

// Metrics holds the Prometheus counters and histograms for location resolution.
type Metrics struct {
	// Provider metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: method={forward,reverse}, status={OK,ZERO_RESULTS,...}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={forward,reverse}

	// Resolution metrics.
	ResolveCache *prometheus.CounterVec // labels: result={hit,miss}
	Resolutions  *prometheus.CounterVec // labels: source={geocoded,coords,fallback}

	// Event publishing metrics.
	EventsPublished    prometheus.Counter
	EventPublishErrors prometheus.Counter
	PendingCacheWrites prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding provider requests by method and status.",
		}, []string{"method", "status"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		ResolveCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_cache_total",
			Help:      "Resolution cache lookups by result.",
		}, []string{"result"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Completed resolutions by source.",
		}, []string{"source"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Resolution events written to Kafka.",
		}),
		EventPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_errors_total",
			Help:      "Resolution events that failed to publish.",
		}),
		PendingCacheWrites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_cache_writes",
			Help:      "Debounced cache writes waiting to be flushed.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.GeocodeRequests,
		m.GeocodeAPIDuration,
		m.ResolveCache,
		m.Resolutions,
		m.EventsPublished,
		m.EventPublishErrors,
		m.PendingCacheWrites,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
