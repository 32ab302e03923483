// Package telemetry adapts the service's metrics and tracing hooks to
// Prometheus and OpenTelemetry.
package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"placementhub/internal/core"
)

// PrometheusRecorder implements core.MetricsRecorder with an operation
// counter and a latency histogram, both labelled by operation and status.
type PrometheusRecorder struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the collectors on reg under namespace.
// An empty namespace defaults to "placementhub".
func NewPrometheusRecorder(reg prometheus.Registerer, namespace string) (*PrometheusRecorder, error) {
	if namespace == "" {
		namespace = "placementhub"
	}
	rec := &PrometheusRecorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "operations_total",
			Help:      "Service operations by outcome.",
		}, []string{"operation", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"operation", "status"}),
	}
	for _, c := range []prometheus.Collector{rec.operations, rec.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Observe implements core.MetricsRecorder.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, status core.OperationStatus, duration time.Duration) {
	if operation == "" {
		return
	}
	r.operations.WithLabelValues(operation, string(status)).Inc()
	r.latency.WithLabelValues(operation, string(status)).Observe(duration.Seconds())
}

var _ core.MetricsRecorder = (*PrometheusRecorder)(nil)
