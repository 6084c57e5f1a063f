package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flood_nova"

// Metrics holds the Prometheus counters, histograms, and gauges for the assistant
// and the help-request intake.
type Metrics struct {
	// Conversation metrics.
	SessionsStarted prometheus.Counter
	SessionsActive  prometheus.Gauge
	Turns           *prometheus.CounterVec // labels: intent, source={option,text}
	Corrections     prometheus.Counter
	RepliesDropped  prometheus.Counter
	LocationLookups *prometheus.CounterVec // labels: outcome={success,error}

	// Help-request metrics.
	HelpRequests      *prometheus.CounterVec // labels: outcome={accepted,invalid,error}
	HelpPriority      prometheus.Histogram
	HelpPublishErrors prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: method={forward,reverse}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: method={forward,reverse}, result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={forward,reverse}
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SessionsStarted,
		m.SessionsActive,
		m.Turns,
		m.Corrections,
		m.RepliesDropped,
		m.LocationLookups,
		m.HelpRequests,
		m.HelpPriority,
		m.HelpPublishErrors,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already registered"
// panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total conversations started.",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Conversations currently held in the session registry.",
		}),
		Turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "User turns by classified intent and input source.",
		}, []string{"intent", "source"}),
		Corrections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spelling_corrections_total",
			Help:      "Typed messages changed by the normalizer.",
		}),
		RepliesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_dropped_total",
			Help:      "Pending replies discarded because their session closed first.",
		}),
		LocationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_resolutions_total",
			Help:      "Location resolution attempts by outcome.",
		}, []string{"outcome"}),
		HelpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "help_requests_total",
			Help:      "Emergency help requests by outcome.",
		}, []string{"outcome"}),
		HelpPriority: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "help_request_priority_score",
			Help:      "Priority score of accepted help requests.",
			Buckets:   []float64{0, 0.4, 0.6, 0.8, 1, 1.5, 2, 3, 5},
		}),
		HelpPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "help_request_publish_errors_total",
			Help:      "Accepted help requests that could not be published to Kafka.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
	}
}
