package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks the number of outbound series fetches (by series and result).
	SeriesFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rates_series_fetches_total",
			Help: "Total number of provider series fetches made (by series and result).",
		},
		[]string{"series", "result"}, // result = "ok" | "error" | "cache_hit"
	)

	// Measures duration of provider CSV fetches.
	SeriesFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rates_series_fetch_duration_seconds",
			Help:    "Duration of provider series fetches in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"series"},
	)

	// Counts surface builds by outcome.
	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rates_surface_builds_total",
			Help: "Total number of rate surface builds.",
		},
		[]string{"result"}, // result = "ok" | "error"
	)

	// Measures full fetch+interpolate+convert build duration.
	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rates_surface_build_duration_seconds",
			Help:    "Duration of full surface rebuilds in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	// Gauges the number of calendar-day rows in the active surface.
	SurfaceRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rates_surface_rows",
			Help: "Calendar-day rows covered by the active rate surface.",
		},
	)

	// Gauges the last successful build time (seconds since epoch).
	LastBuildTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rates_surface_last_build_timestamp",
			Help: "Timestamp (unix seconds) of the last successful surface build.",
		},
	)

	// Tracks query-surface lookups by endpoint and result.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rates_queries_total",
			Help: "Total number of rate/yield lookups served.",
		},
		[]string{"endpoint", "result"}, // result = "ok" | "out_of_range" | "unavailable"
	)

	// Tracks NATS messages published by subject and result.
	NATSMessageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_total",
			Help: "Total number of NATS messages published.",
		},
		[]string{"subject", "result"}, // result = "ok" | "error"
	)

	NATSMessageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nats_message_latency_seconds",
			Help:    "Time taken to publish NATS messages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"subject"},
	)

	// Tracks total errors (aggregated).
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adapter_errors_total",
			Help: "Count of adapter-level errors by component.",
		},
		[]string{"component", "reason"},
	)
)

// ObserveDuration records the time taken since start on the given histogram.
func ObserveDuration(v interface{}, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()

	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case prometheus.Histogram:
		metric.Observe(duration)
	default:
		// counters are not meant for duration tracking
	}
}

func IncSeriesFetch(series, result string) {
	SeriesFetchesTotal.WithLabelValues(series, result).Inc()
}

func IncBuild(result string) {
	BuildsTotal.WithLabelValues(result).Inc()
}

func IncQuery(endpoint, result string) {
	QueriesTotal.WithLabelValues(endpoint, result).Inc()
}

func IncNATSMessage(subject, result string) {
	NATSMessageCount.WithLabelValues(subject, result).Inc()
}

func IncError(component, reason string) {
	ErrorsTotal.WithLabelValues(component, reason).Inc()
}

func SetLastBuild(t time.Time, rows int) {
	LastBuildTimestamp.Set(float64(t.Unix()))
	SurfaceRows.Set(float64(rows))
}
