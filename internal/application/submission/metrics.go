package submission

import (
	"context"
	"time"
)

// Metrics receives submission and void outcomes. Implementations must be safe
// for concurrent use.
type Metrics interface {
	RecordSubmission(ctx context.Context, outcome string)
	RecordDuplicateRetry(ctx context.Context)
	RecordReconciliation(ctx context.Context, result string)
	RecordVoid(ctx context.Context, outcome string)
	RecordGatewayCall(ctx context.Context, operation string, duration time.Duration, err error)
}

type nopMetrics struct{}

func (nopMetrics) RecordSubmission(context.Context, string) {}
func (nopMetrics) RecordDuplicateRetry(context.Context) {}
func (nopMetrics) RecordReconciliation(context.Context, string) {}
func (nopMetrics) RecordVoid(context.Context, string) {}
func (nopMetrics) RecordGatewayCall(context.Context, string, time.Duration, error) {}

// Reconciliation results reported to Metrics
const (
	ReconcileApproved   = "approved"
	ReconcilePending    = "pending"
	ReconcileUnresolved = "unresolved"
	ReconcileError      = "error"
)

// Gateway operations reported to Metrics
const (
	OperationSale      = "sale"
	OperationVoid      = "void"
	OperationReconcile = "reconcile"
)
