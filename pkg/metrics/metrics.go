// Copyright 2025 Certen Protocol
//
// Metrics exposes counters and histograms for the four structural
// transforms (submit/upgrade/shrink/verify) via prometheus client_golang,
// the metrics library this codebase's config already carves out a port
// and path for (pkg/config's MetricsSettings) without ever wiring one up.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every counter/histogram this engine records.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationErrors   *prometheus.CounterVec
	CalendarRoundTrip *prometheus.HistogramVec
}

// New registers a fresh set of metrics against reg. Pass
// prometheus.NewRegistry() for an isolated registry, or nil to use the
// default global one.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		OperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ots",
			Name:      "operations_total",
			Help:      "Count of submit/upgrade/shrink/verify invocations by operation.",
		}, []string{"operation"}),
		OperationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ots",
			Name:      "operation_errors_total",
			Help:      "Count of per-item failures within submit/upgrade/shrink/verify, by operation.",
		}, []string{"operation"}),
		CalendarRoundTrip: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ots",
			Name:      "calendar_round_trip_seconds",
			Help:      "Latency of a single calendar HTTP round trip, by calendar URL.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"calendar"}),
	}
}

// ObserveErrors increments OperationErrors by len(errs) for operation.
func (m *Metrics) ObserveErrors(operation string, errs []error) {
	if len(errs) == 0 {
		return
	}
	m.OperationErrors.WithLabelValues(operation).Add(float64(len(errs)))
}

// Handler returns the HTTP handler to mount at the configured metrics
// path (pkg/config's MetricsSettings.Path).
func Handler() http.Handler {
	return promhttp.Handler()
}
