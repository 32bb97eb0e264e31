package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DataClientMetrics records every data client call by backend, table and action.
type DataClientMetrics struct {
	duration *prometheus.HistogramVec
	calls    *prometheus.CounterVec
}

// NewDataClientMetrics registers the data client metrics on the provided registerer.
func NewDataClientMetrics(reg prometheus.Registerer) *DataClientMetrics {
	if reg == nil {
		return &DataClientMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "data_client_duration_seconds",
		Help:    "Latency of data client calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "table", "action"})
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "data_client_calls_total",
		Help: "Data client calls by outcome.",
	}, []string{"backend", "table", "action", "outcome"})
	reg.MustRegister(duration, calls)
	return &DataClientMetrics{
		duration: duration,
		calls:    calls,
	}
}

// Observe records one call and its outcome.
func (m *DataClientMetrics) Observe(backend, table, action string, took time.Duration, err error) {
	if m == nil || m.duration == nil {
		return
	}
	backend, table, action = normalizeLabel(backend), normalizeLabel(table), normalizeLabel(action)
	m.duration.WithLabelValues(backend, table, action).Observe(took.Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.calls.WithLabelValues(backend, table, action, outcome).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
