package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SessionMetrics records refresh-session revocations.
type SessionMetrics interface {
	// RecordRevocation adds count removed sessions labelled by reason
	// (e.g. "logout", "reuse_detected", "not_found").
	RecordRevocation(ctx context.Context, reason string, count int64)
}

type sessionMetrics struct {
	revocationCounter metric.Int64Counter
}

// NewSessionMetrics creates a SessionMetrics backed by a "<namespace>_session_revocations_total" counter.
func NewSessionMetrics(meterProvider metric.MeterProvider, namespace string) (SessionMetrics, error) {
	meter := meterProvider.Meter(namespace)

	revocationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_session_revocations_total", namespace),
		metric.WithDescription("Total number of refresh sessions removed"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session revocation counter: %w", err)
	}

	return &sessionMetrics{revocationCounter: revocationCounter}, nil
}

// RecordRevocation increments the revocation counter. Zero counts are skipped.
func (s *sessionMetrics) RecordRevocation(ctx context.Context, reason string, count int64) {
	if count <= 0 {
		return
	}
	s.revocationCounter.Add(ctx, count, metric.WithAttributes(attribute.String("reason", reason)))
}

// NoOpSessionMetrics discards revocations when metrics are disabled.
type NoOpSessionMetrics struct{}

// NewNoOpSessionMetrics creates a no-op SessionMetrics implementation.
func NewNoOpSessionMetrics() SessionMetrics {
	return &NoOpSessionMetrics{}
}

// RecordRevocation does nothing.
func (n *NoOpSessionMetrics) RecordRevocation(ctx context.Context, reason string, count int64) {}
