package main

import (
	"context"
	"fmt"

	"github.com/sddportal/backend/internal/domain/payment"
)

// unconfiguredGateway fails every call with the configuration error
type unconfiguredGateway struct {
	err error
}

func (g unconfiguredGateway) fail() error {
	return fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, g.err)
}

func (g unconfiguredGateway) SubmitSale(context.Context, *payment.SaleRequest) (*payment.GatewayResponse, error) {
	return nil, g.fail()
}

func (g unconfiguredGateway) VoidTransaction(context.Context, *payment.VoidRequest) (*payment.GatewayResponse, error) {
	return nil, g.fail()
}

func (g unconfiguredGateway) Reconcile(context.Context, *payment.ReconcileRequest) (*payment.GatewayResponse, error) {
	return nil, g.fail()
}
