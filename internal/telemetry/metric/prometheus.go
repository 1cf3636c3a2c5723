// Package metric provides Prometheus metrics for authclient.
package metric

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "authclient"

// Registry holds all application metrics.
//
// A nil *Registry is valid and records nothing.
type Registry struct {
	registry *prometheus.Registry

	// RequestsTotal counts API calls by operation and outcome
	// (ok, network_unavailable, rejected, conflict, validation, forbidden).
	RequestsTotal *prometheus.CounterVec

	// RequestDuration observes API call latency by operation.
	RequestDuration *prometheus.HistogramVec

	// SessionWrites counts session store mutations by op (save, clear).
	SessionWrites *prometheus.CounterVec

	// SubmitsRejected counts submissions refused while another was in flight.
	SubmitsRejected *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Authentication API requests by operation and outcome",
		}, []string{"operation", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Authentication API request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		SessionWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "writes_total",
			Help:      "Session store mutations by operation",
		}, []string{"op"}),
		SubmitsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flow",
			Name:      "submits_rejected_total",
			Help:      "Submissions rejected because another was in progress",
		}, []string{"flow"}),
	}

	r.registry.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.SessionWrites,
		r.SubmitsRejected,
	)
	return r
}

// Registerer exposes the underlying registry so other components (for
// example the badger engine) can add their own collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	if r == nil {
		return nil
	}
	return r.registry
}

// Gatherer exposes the underlying registry for reading.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// ObserveRequest records one API call.
func (r *Registry) ObserveRequest(operation, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(operation, outcome).Inc()
	r.RequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// SessionWrite records a session store mutation.
func (r *Registry) SessionWrite(op string) {
	if r == nil {
		return
	}
	r.SessionWrites.WithLabelValues(op).Inc()
}

// SubmitRejected records a submission refused by the re-entry guard.
func (r *Registry) SubmitRejected(flow string) {
	if r == nil {
		return
	}
	r.SubmitsRejected.WithLabelValues(flow).Inc()
}

// WriteTextfile writes all metrics in the text exposition format to path,
// atomically, for the node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
