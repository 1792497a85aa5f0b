package telemetry

import (
	"context"
	"testing"

	"github.com/sddportal/backend/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type stubGateway struct {
	resp *payment.GatewayResponse
	err  error
}

func (s stubGateway) SubmitSale(context.Context, *payment.SaleRequest) (*payment.GatewayResponse, error) {
	return s.resp, s.err
}

func (s stubGateway) VoidTransaction(context.Context, *payment.VoidRequest) (*payment.GatewayResponse, error) {
	return s.resp, s.err
}

func (s stubGateway) Reconcile(context.Context, *payment.ReconcileRequest) (*payment.GatewayResponse, error) {
	return s.resp, s.err
}

func TestTracedGateway_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ok := NewTracedGateway(stubGateway{resp: &payment.GatewayResponse{OK: true, Status: "approved", UniqueID: "U1"}}, tp.Tracer("test"))
	resp, err := ok.SubmitSale(context.Background(), &payment.SaleRequest{TransactionID: "TX-1"})
	require.NoError(t, err)
	assert.Equal(t, "U1", resp.UniqueID)

	failing := NewTracedGateway(stubGateway{err: payment.ErrGatewayUnavailable}, tp.Tracer("test"))
	_, err = failing.Reconcile(context.Background(), &payment.ReconcileRequest{TransactionID: "TX-1"})
	assert.ErrorIs(t, err, payment.ErrGatewayUnavailable)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "gateway.sdd_sale", ended[0].Name())
	assert.Equal(t, trace.SpanKindClient, ended[0].SpanKind())
	assert.NotEqual(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "gateway.reconcile", ended[1].Name())
	assert.Equal(t, codes.Error, ended[1].Status().Code)
}
