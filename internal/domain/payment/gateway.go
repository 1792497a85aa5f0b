package payment

import (
	"context"
	"errors"
	"strings"
)

// ---------------------------------------------------------------------------
// Gateway Errors
// ---------------------------------------------------------------------------

var (
	ErrGatewayNotConfigured   = errors.New("payment: gateway not configured")
	ErrGatewayUnavailable     = errors.New("payment: gateway temporarily unavailable")
	ErrGatewayRequestFailed   = errors.New("payment: gateway request failed")
	ErrGatewayInvalidResponse = errors.New("payment: invalid gateway response")

	ErrInvalidTransactionID = errors.New("payment: invalid transaction ID")
	ErrInvalidReferenceID   = errors.New("payment: invalid reference ID")
)

// ---------------------------------------------------------------------------
// Gateway statuses
// ---------------------------------------------------------------------------

// Status values reported by the gateway and its reconciliation endpoint
const (
	StatusApproved     = "approved"
	StatusSuccess      = "success"
	StatusSuccessful   = "successful"
	StatusPending      = "pending"
	StatusPendingAsync = "pending_async"
	StatusInProgress   = "in_progress"
	StatusProcessing   = "processing"
	StatusCreated      = "created"
	StatusDeclined     = "declined"
	StatusError        = "error"
	StatusVoided       = "voided"
)

var approvedStatuses = map[string]struct{}{
	StatusApproved:   {},
	StatusSuccess:    {},
	StatusSuccessful: {},
}

var pendingStatuses = map[string]struct{}{
	StatusPending:      {},
	StatusInProgress:   {},
	StatusProcessing:   {},
	StatusPendingAsync: {},
	StatusCreated:      {},
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// IsApprovedStatus reports whether status belongs to the approved set (case-insensitive)
func IsApprovedStatus(status string) bool {
	_, ok := approvedStatuses[normalizeStatus(status)]
	return ok
}

// IsPendingStatus reports whether status belongs to the pending set (case-insensitive)
func IsPendingStatus(status string) bool {
	_, ok := pendingStatuses[normalizeStatus(status)]
	return ok
}

// ---------------------------------------------------------------------------
// Requests and responses
// ---------------------------------------------------------------------------

// SaleRequest is a single SDD sale ready to be sent to the gateway.
// AmountMinor is expressed in the currency's minor unit (cents).
type SaleRequest struct {
	TransactionID string `json:"transactionId" validate:"required,max=255"`
	AmountMinor   int64  `json:"amountMinor" validate:"gt=0"`
	Currency      string `json:"currency" validate:"required,len=3,uppercase"`
	IBAN          string `json:"iban" validate:"required,min=15,max=34,alphanum"`
	BIC           string `json:"bic,omitempty" validate:"omitempty,min=8,max=11,alphanum"`
	FirstName     string `json:"firstName,omitempty" validate:"max=255"`
	LastName      string `json:"lastName" validate:"required,max=255"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Usage         string `json:"usage,omitempty" validate:"max=255"`
	RemoteIP      string `json:"remoteIp,omitempty" validate:"omitempty,ip"`
	Address1      string `json:"address1,omitempty"`
	ZipCode       string `json:"zipCode,omitempty"`
	City          string `json:"city,omitempty"`
	Country       string `json:"country,omitempty" validate:"omitempty,len=2"`
}

// Masked returns a copy of the request that is safe to persist or return
func (r *SaleRequest) Masked() *SaleRequest {
	if r == nil {
		return nil
	}
	masked := *r
	masked.IBAN = MaskIBAN(r.IBAN)
	return &masked
}

// WithTransactionID returns a copy of the request carrying a different transaction ID
func (r *SaleRequest) WithTransactionID(id string) *SaleRequest {
	clone := *r
	clone.TransactionID = id
	return &clone
}

// VoidRequest voids a previously approved transaction identified by ReferenceID
// (the gateway's unique id of the original transaction).
type VoidRequest struct {
	TransactionID string `json:"transactionId"`
	ReferenceID   string `json:"referenceId"`
	Usage         string `json:"usage,omitempty"`
	RemoteIP      string `json:"remoteIp,omitempty"`
}

// Validate validates the void request
func (r *VoidRequest) Validate() error {
	if strings.TrimSpace(r.TransactionID) == "" {
		return ErrInvalidTransactionID
	}
	if strings.TrimSpace(r.ReferenceID) == "" {
		return ErrInvalidReferenceID
	}
	return nil
}

// ReconcileRequest looks up a transaction by the merchant transaction id
type ReconcileRequest struct {
	TransactionID string `json:"transactionId"`
}

// GatewayResponse is the normalized gateway reply for sales, voids and reconciliation
type GatewayResponse struct {
	OK               bool   `json:"ok"`
	Status           string `json:"status,omitempty"`
	UniqueID         string `json:"uniqueId,omitempty"`
	TransactionID    string `json:"transactionId,omitempty"`
	Code             string `json:"code,omitempty"`
	Message          string `json:"message,omitempty"`
	TechnicalMessage string `json:"technicalMessage,omitempty"`
}

// Succeeded reports whether the gateway accepted the request with a known status
func (r *GatewayResponse) Succeeded() bool {
	return r != nil && r.OK && strings.TrimSpace(r.Status) != ""
}

// IsApproved reports whether the response carries an approved status
func (r *GatewayResponse) IsApproved() bool {
	return r != nil && IsApprovedStatus(r.Status)
}

// ErrorMessage returns the most descriptive message the gateway gave
func (r *GatewayResponse) ErrorMessage() string {
	if r == nil {
		return ""
	}
	if r.Message != "" {
		return r.Message
	}
	if r.TechnicalMessage != "" {
		return r.TechnicalMessage
	}
	if r.Status != "" {
		return "gateway returned status " + r.Status
	}
	return "gateway request was not accepted"
}

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// Gateway submits SDD sales and voids to the payment gateway.
// A returned error is a transport-level failure; gateway-level rejections come
// back as a response with OK=false.
type Gateway interface {
	SubmitSale(ctx context.Context, req *SaleRequest) (*GatewayResponse, error)
	VoidTransaction(ctx context.Context, req *VoidRequest) (*GatewayResponse, error)
}

// Reconciler resolves the best-known status of a transaction by its merchant id
type Reconciler interface {
	Reconcile(ctx context.Context, req *ReconcileRequest) (*GatewayResponse, error)
}
