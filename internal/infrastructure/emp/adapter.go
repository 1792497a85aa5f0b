package emp

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sddportal/backend/internal/domain/payment"
)

const maxResponseSize = 1 << 20

// Adapter talks to the Genesis XML API. It implements both payment.Gateway and
// payment.Reconciler.
type Adapter struct {
	config     *Config
	httpClient *http.Client
}

var (
	_ payment.Gateway    = (*Adapter)(nil)
	_ payment.Reconciler = (*Adapter)(nil)
)

// NewAdapter creates a new Genesis adapter
func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// WithHTTPClient replaces the HTTP client, e.g. to add tracing transports
func (a *Adapter) WithHTTPClient(client *http.Client) *Adapter {
	if client != nil {
		a.httpClient = client
	}
	return a
}

// SubmitSale sends an sdd_sale transaction
func (a *Adapter) SubmitSale(ctx context.Context, req *payment.SaleRequest) (*payment.GatewayResponse, error) {
	if req == nil || req.TransactionID == "" {
		return nil, payment.ErrInvalidTransactionID
	}
	return a.post(ctx, a.config.processURL(), saleTransaction(req))
}

// VoidTransaction voids the transaction referenced by req.ReferenceID
func (a *Adapter) VoidTransaction(ctx context.Context, req *payment.VoidRequest) (*payment.GatewayResponse, error) {
	if req == nil {
		return nil, payment.ErrInvalidReferenceID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return a.post(ctx, a.config.processURL(), voidTransaction(req))
}

// Reconcile looks up a transaction by its merchant transaction id
func (a *Adapter) Reconcile(ctx context.Context, req *payment.ReconcileRequest) (*payment.GatewayResponse, error) {
	if req == nil || req.TransactionID == "" {
		return nil, payment.ErrInvalidTransactionID
	}
	return a.post(ctx, a.config.reconcileURL(), &reconcileRequest{TransactionID: req.TransactionID})
}

// post sends an XML body and decodes the payment_response. Gateway-level
// errors carried in a well-formed payment_response are returned as a response
// with OK=false, not as an error.
func (a *Adapter) post(ctx context.Context, url string, body interface{}) (*payment.GatewayResponse, error) {
	payload, err := xml.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("emp: failed to encode request: %w", err)
	}
	payload = append([]byte(xml.Header), payload...)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("emp: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=utf-8")
	httpReq.Header.Set("Accept", "text/xml")
	httpReq.SetBasicAuth(a.config.Username, a.config.Password)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", payment.ErrGatewayUnavailable, err)
	}

	var parsed paymentResponse
	parseErr := xml.Unmarshal(respBody, &parsed)
	if resp.StatusCode >= http.StatusInternalServerError {
		if parseErr == nil && parsed.Status != "" {
			return nil, fmt.Errorf("%w: HTTP %d: %s", payment.ErrGatewayRequestFailed, resp.StatusCode,
				parsed.toGatewayResponse().ErrorMessage())
		}
		return nil, fmt.Errorf("%w: HTTP %d", payment.ErrGatewayRequestFailed, resp.StatusCode)
	}
	if parseErr != nil || parsed.Status == "" {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("%w: HTTP %d", payment.ErrGatewayRequestFailed, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: unexpected response body", payment.ErrGatewayInvalidResponse)
	}

	return parsed.toGatewayResponse(), nil
}
