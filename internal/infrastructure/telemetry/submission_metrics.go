package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	attrOutcome   = attribute.Key("outcome")
	attrResult    = attribute.Key("result")
	attrOperation = attribute.Key("operation")
	attrError     = attribute.Key("error")
)

// SubmissionMetrics records row submission, reconciliation and void outcomes.
type SubmissionMetrics struct {
	submissions      metric.Int64Counter
	duplicateRetries metric.Int64Counter
	reconciliations  metric.Int64Counter
	voids            metric.Int64Counter
	gatewayDuration  metric.Float64Histogram
}

// NewSubmissionMetrics registers the submission instruments on meter
func NewSubmissionMetrics(meter metric.Meter) (*SubmissionMetrics, error) {
	if meter == nil {
		return nil, errors.New("NewSubmissionMetrics: meter cannot be nil")
	}

	m := &SubmissionMetrics{}
	var err error
	if m.submissions, err = meter.Int64Counter("sdd_row_submissions_total",
		metric.WithDescription("Row submissions by final outcome"),
		metric.WithUnit("{submission}")); err != nil {
		return nil, fmt.Errorf("failed to create counter sdd_row_submissions_total: %w", err)
	}
	if m.duplicateRetries, err = meter.Int64Counter("sdd_duplicate_retries_total",
		metric.WithDescription("Transaction id bumps caused by duplicate rejections"),
		metric.WithUnit("{retry}")); err != nil {
		return nil, fmt.Errorf("failed to create counter sdd_duplicate_retries_total: %w", err)
	}
	if m.reconciliations, err = meter.Int64Counter("sdd_reconciliations_total",
		metric.WithDescription("Reconciliation lookups by result"),
		metric.WithUnit("{lookup}")); err != nil {
		return nil, fmt.Errorf("failed to create counter sdd_reconciliations_total: %w", err)
	}
	if m.voids, err = meter.Int64Counter("sdd_voids_total",
		metric.WithDescription("Void attempts by outcome"),
		metric.WithUnit("{void}")); err != nil {
		return nil, fmt.Errorf("failed to create counter sdd_voids_total: %w", err)
	}
	if m.gatewayDuration, err = meter.Float64Histogram("sdd_gateway_call_duration_ms",
		metric.WithDescription("Gateway round trip duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(GatewayDurationBuckets...)); err != nil {
		return nil, fmt.Errorf("failed to create histogram sdd_gateway_call_duration_ms: %w", err)
	}
	return m, nil
}

func (m *SubmissionMetrics) RecordSubmission(ctx context.Context, outcome string) {
	m.submissions.Add(ctx, 1, metric.WithAttributes(attrOutcome.String(outcome)))
}

func (m *SubmissionMetrics) RecordDuplicateRetry(ctx context.Context) {
	m.duplicateRetries.Add(ctx, 1)
}

func (m *SubmissionMetrics) RecordReconciliation(ctx context.Context, result string) {
	m.reconciliations.Add(ctx, 1, metric.WithAttributes(attrResult.String(result)))
}

func (m *SubmissionMetrics) RecordVoid(ctx context.Context, outcome string) {
	m.voids.Add(ctx, 1, metric.WithAttributes(attrOutcome.String(outcome)))
}

func (m *SubmissionMetrics) RecordGatewayCall(ctx context.Context, operation string, duration time.Duration, err error) {
	ms := float64(duration) / float64(time.Millisecond)
	m.gatewayDuration.Record(ctx, ms, metric.WithAttributes(
		attrOperation.String(operation),
		attrError.Bool(err != nil),
	))
}
