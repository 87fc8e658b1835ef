// Package metric provides Prometheus instrumentation for SPARQL query
// invocations and a /metrics HTTP server for scraping.
package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all client-level metrics
type Metrics struct {
	QueriesTotal     *prometheus.CounterVec
	QueryDuration    *prometheus.HistogramVec
	BytesReceived    prometheus.Counter
	ErrorsTotal      *prometheus.CounterVec
	RowsDecoded      prometheus.Counter
	RowsSkipped      prometheus.Counter
	OpenConnections  prometheus.Gauge
	ThrottleWaitTime prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all client metrics
func NewMetrics() *Metrics {
	return &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sparql",
				Subsystem: "client",
				Name:      "queries_total",
				Help:      "Total number of query invocations",
			},
			[]string{"form", "status"},
		),

		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sparql",
				Subsystem: "client",
				Name:      "query_duration_seconds",
				Help:      "End-to-end query invocation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"form"},
		),

		BytesReceived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sparql",
				Subsystem: "client",
				Name:      "bytes_received_total",
				Help:      "Total response body bytes folded by the receive loop",
			},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sparql",
				Subsystem: "client",
				Name:      "errors_total",
				Help:      "Total failed query invocations by error kind",
			},
			[]string{"kind"},
		),

		RowsDecoded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sparql",
				Subsystem: "decode",
				Name:      "rows_total",
				Help:      "Total binding rows decoded into records",
			},
		),

		RowsSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sparql",
				Subsystem: "decode",
				Name:      "rows_skipped_total",
				Help:      "Total binding rows skipped by lenient decoding",
			},
		),

		OpenConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "sparql",
				Subsystem: "client",
				Name:      "open_connections",
				Help:      "Currently open transport connections",
			},
		),

		ThrottleWaitTime: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sparql",
				Subsystem: "client",
				Name:      "throttle_wait_seconds_total",
				Help:      "Cumulative seconds spent waiting on the client-side rate limiter",
			},
		),
	}
}

// collectors returns every metric for bulk registration
func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.QueriesTotal,
		m.QueryDuration,
		m.BytesReceived,
		m.ErrorsTotal,
		m.RowsDecoded,
		m.RowsSkipped,
		m.OpenConnections,
		m.ThrottleWaitTime,
	}
}

// ObserveQuery records one completed invocation
func (m *Metrics) ObserveQuery(form string, status int, duration time.Duration, bytes int) {
	m.QueriesTotal.WithLabelValues(form, strconv.Itoa(status)).Inc()
	m.QueryDuration.WithLabelValues(form).Observe(duration.Seconds())
	if bytes > 0 {
		m.BytesReceived.Add(float64(bytes))
	}
}

// ObserveError records one failed invocation by error kind
func (m *Metrics) ObserveError(kind string) {
	m.ErrorsTotal.WithLabelValues(kind).Inc()
}
