package upload

import (
	"strings"
	"time"

	"github.com/sddportal/backend/internal/domain/payment"
	"github.com/sddportal/backend/internal/domain/shared"
)

// RowStatus represents the submission state of a single record
type RowStatus string

const (
	RowStatusPending   RowStatus = "pending"
	RowStatusSubmitted RowStatus = "submitted"
	RowStatusApproved  RowStatus = "approved"
	RowStatusError     RowStatus = "error"
	RowStatusVoided    RowStatus = "voided"
)

// IsValid checks if the status is valid
func (s RowStatus) IsValid() bool {
	switch s {
	case RowStatusPending, RowStatusSubmitted, RowStatusApproved, RowStatusError, RowStatusVoided:
		return true
	}
	return false
}

// String returns the string representation of RowStatus
func (s RowStatus) String() string {
	return string(s)
}

// GatewaySnapshot is the last gateway reply recorded on a row
type GatewaySnapshot struct {
	UniqueID            string `json:"uniqueId,omitempty"`
	TransactionID       string `json:"transactionId,omitempty"`
	Status              string `json:"status,omitempty"`
	Code                string `json:"code,omitempty"`
	Message             string `json:"message,omitempty"`
	TechnicalMessage    string `json:"technicalMessage,omitempty"`
	ResolvedViaExisting bool   `json:"resolvedViaExisting,omitempty"`
}

// SnapshotOf builds a snapshot from a gateway response
func SnapshotOf(resp *payment.GatewayResponse) *GatewaySnapshot {
	if resp == nil {
		return nil
	}
	return &GatewaySnapshot{
		UniqueID:         resp.UniqueID,
		TransactionID:    resp.TransactionID,
		Status:           resp.Status,
		Code:             resp.Code,
		Message:          resp.Message,
		TechnicalMessage: resp.TechnicalMessage,
	}
}

// Row is the submission state of the record at the same index
type Row struct {
	// Ordinal is the 1-based position of the record when the upload was
	// created. It never changes when earlier records are deleted.
	Ordinal           int                  `json:"ordinal,omitempty"`
	Status            RowStatus            `json:"status"`
	Attempts          int                  `json:"attempts"`
	RetryCount        int                  `json:"retryCount"`
	DuplicateRetries  int                  `json:"duplicateRetries"`
	BaseTransactionID string               `json:"baseTransactionId,omitempty"`
	LastTransactionID string               `json:"lastTransactionId,omitempty"`
	Error             string               `json:"error,omitempty"`
	EMP               *GatewaySnapshot     `json:"emp,omitempty"`
	Request           *payment.SaleRequest `json:"request,omitempty"`
	LastAttemptAt     *time.Time           `json:"lastAttemptAt,omitempty"`
	VoidedAt          *time.Time           `json:"voidedAt,omitempty"`
	VoidResponse      *GatewaySnapshot     `json:"voidResponse,omitempty"`
	VoidFailed        bool                 `json:"voidFailed,omitempty"`
	VoidError         string               `json:"voidError,omitempty"`
}

// NewRow creates a pending row
func NewRow() Row {
	return Row{Status: RowStatusPending}
}

// UniqueID returns the gateway unique id of the last recorded transaction
func (r *Row) UniqueID() string {
	if r.EMP == nil {
		return ""
	}
	return r.EMP.UniqueID
}

// TransactionID returns the transaction id the gateway knows this row by
func (r *Row) TransactionID() string {
	if r.LastTransactionID != "" {
		return r.LastTransactionID
	}
	return r.BaseTransactionID
}

// ErrEmptyBaseTransactionID rejects mapped ids that are nothing but retry suffixes
var ErrEmptyBaseTransactionID = shared.NewDomainError("INVALID_TRANSACTION_ID", "transactionId: is empty once retry suffixes are removed")

// EnsureBaseTransactionID derives the base id from mapped once and returns it.
// Later calls keep the first value even if the mapper output changes.
func (r *Row) EnsureBaseTransactionID(mapped string) (string, error) {
	if r.BaseTransactionID == "" {
		base := strings.TrimSpace(payment.BaseTransactionID(mapped))
		if base == "" {
			return "", ErrEmptyBaseTransactionID
		}
		r.BaseTransactionID = base
	}
	return r.BaseTransactionID, nil
}

// ResetCallCounters clears per-call state before a submission starts
func (r *Row) ResetCallCounters() {
	r.DuplicateRetries = 0
}

// MarkMappingFailed records a validation failure that prevented any gateway call
func (r *Row) MarkMappingFailed(message string, now time.Time) {
	r.Attempts++
	r.LastAttemptAt = &now
	r.Status = RowStatusError
	r.Error = message
}

// BeginAttempt records an attempt right before the gateway is called
func (r *Row) BeginAttempt(req *payment.SaleRequest, now time.Time) {
	r.Attempts++
	r.LastAttemptAt = &now
	r.LastTransactionID = req.TransactionID
	r.Request = req.Masked()
	r.Status = RowStatusSubmitted
	r.Error = ""
}

// ApplyAccepted records a gateway reply that was accepted with a known status
func (r *Row) ApplyAccepted(resp *payment.GatewayResponse) {
	r.EMP = SnapshotOf(resp)
	if resp.IsApproved() {
		r.Status = RowStatusApproved
	} else {
		r.Status = RowStatusSubmitted
	}
}

// ApplyReconciled records the outcome of a prior attempt discovered through
// reconciliation. It returns false when the status is neither approved nor pending.
func (r *Row) ApplyReconciled(resp *payment.GatewayResponse) bool {
	if resp == nil {
		return false
	}
	var status RowStatus
	switch {
	case payment.IsApprovedStatus(resp.Status):
		status = RowStatusApproved
	case payment.IsPendingStatus(resp.Status):
		status = RowStatusSubmitted
	default:
		return false
	}
	snap := SnapshotOf(resp)
	snap.ResolvedViaExisting = true
	if snap.TransactionID == "" {
		snap.TransactionID = r.LastTransactionID
	}
	r.EMP = snap
	r.Status = status
	r.Error = ""
	return true
}

// RecordDuplicate bumps the retry counters after an unresolved duplicate
func (r *Row) RecordDuplicate(resp *payment.GatewayResponse) {
	if resp != nil {
		r.EMP = SnapshotOf(resp)
	}
	r.RetryCount++
	r.DuplicateRetries++
}

// Fail marks the row as failed with message; resp may be nil for transport errors
func (r *Row) Fail(message string, resp *payment.GatewayResponse) {
	if resp != nil {
		r.EMP = SnapshotOf(resp)
	}
	r.Status = RowStatusError
	r.Error = message
}

// MarkVoided records a successful void. Only approved rows can be voided.
func (r *Row) MarkVoided(resp *payment.GatewayResponse, now time.Time) error {
	if r.Status != RowStatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Only approved rows can be voided")
	}
	r.Status = RowStatusVoided
	r.VoidedAt = &now
	r.VoidResponse = SnapshotOf(resp)
	r.VoidFailed = false
	r.VoidError = ""
	return nil
}

// MarkVoidFailed records a failed void. The row status is left unchanged.
func (r *Row) MarkVoidFailed(message string, resp *payment.GatewayResponse) {
	r.VoidFailed = true
	r.VoidError = message
	if resp != nil {
		r.VoidResponse = SnapshotOf(resp)
	}
}
