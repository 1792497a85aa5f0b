package submission

import (
	"github.com/sddportal/backend/internal/domain/shared"
	"github.com/sddportal/backend/internal/domain/upload"
)

// ErrDuplicateRetriesExceededMessage is recorded on rows whose duplicate retry budget ran out
const ErrDuplicateRetriesExceededMessage = "Duplicate transaction_id after retries"

// ErrMissingVoidIdentifiersMessage is recorded on approved rows that cannot be voided
const ErrMissingVoidIdentifiersMessage = "missing uniqueId or transactionId"

// ErrVoidInterruptedMessage is recorded on rows left unvoided because the batch was cancelled
const ErrVoidInterruptedMessage = "void batch interrupted"

// ErrStoreFailure wraps persistence failures; these surface as internal errors
var ErrStoreFailure = shared.ErrStoreFailure

// ErrRowFinal rejects submissions of rows that already hold an approved or voided transaction
var ErrRowFinal = shared.NewDomainError("INVALID_STATE", "Row is already approved or voided")

// FailureKind tells the HTTP layer how a failed row submission should be reported
type FailureKind string

const (
	FailureNone               FailureKind = ""
	FailureValidation         FailureKind = "validation"
	FailureDeclined           FailureKind = "declined"
	FailureTransport          FailureKind = "transport"
	FailureDuplicateExhausted FailureKind = "duplicate_retries_exceeded"
)

// SubmitResult is the outcome of one SubmitRow call.
// OK is false iff Row.Status is error.
type SubmitResult struct {
	OK                  bool        `json:"ok"`
	UploadID            string      `json:"uploadId"`
	RowIndex            int         `json:"rowIndex"`
	Row                 upload.Row  `json:"row"`
	ResolvedViaExisting bool        `json:"resolvedViaExisting"`
	DuplicateRetries    int         `json:"duplicateRetries"`
	Error               string      `json:"error,omitempty"`
	FailureKind         FailureKind `json:"failureKind,omitempty"`
}

// VoidItem is the per-row result of a batch void
type VoidItem struct {
	RowIndex          int    `json:"rowIndex"`
	Success           bool   `json:"success"`
	TransactionID     string `json:"transactionId,omitempty"`
	VoidTransactionID string `json:"voidTransactionId,omitempty"`
	UniqueID          string `json:"uniqueId,omitempty"`
	Status            string `json:"status,omitempty"`
	Error             string `json:"error,omitempty"`
}

// VoidResult is the outcome of one VoidApproved call
type VoidResult struct {
	OK            bool       `json:"ok"`
	UploadID      string     `json:"uploadId"`
	VoidedCount   int        `json:"voidedCount"`
	FailedCount   int        `json:"failedCount"`
	ApprovedCount int        `json:"approvedCount"`
	TotalVoided   int        `json:"totalVoided"`
	Results       []VoidItem `json:"results"`
}
