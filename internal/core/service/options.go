package service

import (
	"github.com/yndnr/authclient/internal/core/domain"
	"github.com/yndnr/authclient/internal/telemetry/logger"
	"github.com/yndnr/authclient/internal/telemetry/metric"
)

// FlowOption configures a flow.
type FlowOption func(*flowDeps)

type flowDeps struct {
	logger  logger.Logger
	metrics *metric.Registry
}

// WithLogger sets the flow logger.
func WithLogger(l logger.Logger) FlowOption {
	return func(d *flowDeps) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetrics sets the metrics registry. A nil registry disables metrics.
func WithMetrics(m *metric.Registry) FlowOption {
	return func(d *flowDeps) {
		d.metrics = m
	}
}

func newFlowDeps(name string, opts []FlowOption) flowDeps {
	d := flowDeps{logger: logger.Default()}
	for _, opt := range opts {
		opt(&d)
	}
	d.logger = d.logger.With("flow", name)
	return d
}

// classify guarantees an AuthError at the flow boundary. Authenticators
// already classify; anything else is reported as a rejection with the
// flow's fallback message.
func classify(err error, fallback string) *domain.AuthError {
	if ae, ok := domain.AsAuthError(err); ok {
		return ae
	}
	ae := domain.Rejected(0, "", fallback)
	ae.Cause = err
	return ae
}
