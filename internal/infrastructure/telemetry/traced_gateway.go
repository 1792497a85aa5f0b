package telemetry

import (
	"context"

	"github.com/sddportal/backend/internal/domain/payment"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const gatewayTracerName = "github.com/sddportal/backend/gateway"

// GatewayClient is the gateway surface the tracing decorator wraps
type GatewayClient interface {
	payment.Gateway
	payment.Reconciler
}

// TracedGateway emits a client span around every gateway call
type TracedGateway struct {
	next   GatewayClient
	tracer trace.Tracer
}

// NewTracedGateway wraps next. A nil tracer uses the global provider.
func NewTracedGateway(next GatewayClient, tracer trace.Tracer) *TracedGateway {
	if tracer == nil {
		tracer = otel.Tracer(gatewayTracerName)
	}
	return &TracedGateway{next: next, tracer: tracer}
}

func (g *TracedGateway) SubmitSale(ctx context.Context, req *payment.SaleRequest) (*payment.GatewayResponse, error) {
	ctx, span := g.start(ctx, "gateway.sdd_sale", req.TransactionID)
	defer span.End()
	resp, err := g.next.SubmitSale(ctx, req)
	finish(span, resp, err)
	return resp, err
}

func (g *TracedGateway) VoidTransaction(ctx context.Context, req *payment.VoidRequest) (*payment.GatewayResponse, error) {
	ctx, span := g.start(ctx, "gateway.void", req.TransactionID)
	defer span.End()
	span.SetAttributes(attribute.String("payment.reference_id", req.ReferenceID))
	resp, err := g.next.VoidTransaction(ctx, req)
	finish(span, resp, err)
	return resp, err
}

func (g *TracedGateway) Reconcile(ctx context.Context, req *payment.ReconcileRequest) (*payment.GatewayResponse, error) {
	ctx, span := g.start(ctx, "gateway.reconcile", req.TransactionID)
	defer span.End()
	resp, err := g.next.Reconcile(ctx, req)
	finish(span, resp, err)
	return resp, err
}

func (g *TracedGateway) start(ctx context.Context, name, transactionID string) (context.Context, trace.Span) {
	return g.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("payment.transaction_id", transactionID)),
	)
}

func finish(span trace.Span, resp *payment.GatewayResponse, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	if resp != nil {
		span.SetAttributes(
			attribute.String("payment.status", resp.Status),
			attribute.String("payment.unique_id", resp.UniqueID),
		)
		if resp.Code != "" {
			span.SetAttributes(attribute.String("payment.code", resp.Code))
		}
	}
}

var (
	_ payment.Gateway    = (*TracedGateway)(nil)
	_ payment.Reconciler = (*TracedGateway)(nil)
)
