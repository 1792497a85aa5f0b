package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/domain/account"
	"github.com/sddportal/backend/internal/domain/payment"
	"github.com/sddportal/backend/internal/domain/shared"
	"github.com/sddportal/backend/internal/domain/upload"
	"go.uber.org/zap"
)

// DefaultMaxDuplicateRetries is the number of duplicate-triggered identifier
// bumps allowed per SubmitRow call.
const DefaultMaxDuplicateRetries = 3

// RowSubmissionService submits a single upload row to the gateway, resolving
// duplicate transaction ids through reconciliation.
type RowSubmissionService struct {
	uploads             upload.Repository
	accounts            account.ConfigRepository
	mapper              account.RecordMapper
	gateway             payment.Gateway
	reconciler          payment.Reconciler
	classifier          payment.FailureClassifier
	metrics             Metrics
	maxDuplicateRetries int
	now                 func() time.Time
	logger              *zap.Logger
}

// RowSubmissionServiceConfig holds the dependencies of RowSubmissionService
type RowSubmissionServiceConfig struct {
	Uploads    upload.Repository
	Accounts   account.ConfigRepository
	Mapper     account.RecordMapper
	Gateway    payment.Gateway
	Reconciler payment.Reconciler
	Classifier payment.FailureClassifier
	Metrics    Metrics
	// MaxDuplicateRetries defaults to DefaultMaxDuplicateRetries when zero
	MaxDuplicateRetries int
	Now                 func() time.Time
	Logger              *zap.Logger
}

// NewRowSubmissionService creates a new RowSubmissionService
func NewRowSubmissionService(config RowSubmissionServiceConfig) *RowSubmissionService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	classifier := config.Classifier
	if classifier == nil {
		classifier = payment.MustDuplicateClassifier(nil, nil)
	}
	maxRetries := config.MaxDuplicateRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxDuplicateRetries
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &RowSubmissionService{
		uploads:             config.Uploads,
		accounts:            config.Accounts,
		mapper:              config.Mapper,
		gateway:             config.Gateway,
		reconciler:          config.Reconciler,
		classifier:          classifier,
		metrics:             metrics,
		maxDuplicateRetries: maxRetries,
		now:                 now,
		logger:              logger,
	}
}

// SubmitRow submits the row at rowIndex of the upload.
//
// Gateway and reconciliation failures never escape as errors: they become row
// state and are described by the result. A returned error means the call was
// rejected before any mutation (forbidden, not found, bad index) or the final
// row write failed.
func (s *RowSubmissionService) SubmitRow(ctx context.Context, caller upload.Caller, uploadID uuid.UUID, rowIndex int) (*SubmitResult, error) {
	if !caller.Role.CanWrite() {
		return nil, shared.ErrForbidden
	}

	u, err := s.uploads.FindByID(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if !caller.CanWrite(u) {
		return nil, shared.ErrForbidden
	}
	row, err := u.RowAt(rowIndex)
	if err != nil {
		return nil, err
	}
	if row.Status == upload.RowStatusApproved || row.Status == upload.RowStatusVoided {
		return nil, ErrRowFinal
	}
	record, err := u.RecordAt(rowIndex)
	if err != nil {
		return nil, err
	}

	cfg, err := s.resolveAccount(ctx, u)
	if err != nil {
		return nil, err
	}

	log := s.logger.With(
		zap.String("upload_id", uploadID.String()),
		zap.Int("row_index", rowIndex),
	)

	row.ResetCallCounters()
	resolved, kind := s.run(ctx, log, u, row, record, cfg, rowIndex)

	u.RowsChanged()
	if err := s.uploads.SaveRows(context.WithoutCancel(ctx), u); err != nil {
		log.Error("Failed to persist row state", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	result := &SubmitResult{
		OK:                  row.Status != upload.RowStatusError,
		UploadID:            uploadID.String(),
		RowIndex:            rowIndex,
		Row:                 *row,
		ResolvedViaExisting: resolved,
		DuplicateRetries:    row.DuplicateRetries,
	}
	if !result.OK {
		result.Error = row.Error
		result.FailureKind = kind
	}

	outcome := string(row.Status)
	if resolved {
		outcome += "_resolved"
	}
	s.metrics.RecordSubmission(ctx, outcome)
	log.Info("Row submission finished",
		zap.String("status", string(row.Status)),
		zap.Int("attempts", row.Attempts),
		zap.Int("retry_count", row.RetryCount),
		zap.Int("duplicate_retries", row.DuplicateRetries),
		zap.Bool("resolved_via_existing", resolved))

	return result, nil
}

// run executes the bounded submit/reconcile loop, mutating row in memory only
func (s *RowSubmissionService) run(
	ctx context.Context,
	log *zap.Logger,
	u *upload.Upload,
	row *upload.Row,
	record upload.Record,
	cfg *account.Config,
	rowIndex int,
) (bool, FailureKind) {
	req, err := s.mapper.Map(ctx, record, cfg, account.RowRef{UploadID: u.ID, RowIndex: rowIndex, Ordinal: row.Ordinal})
	if err != nil {
		log.Warn("Record mapping failed", zap.Error(err))
		row.MarkMappingFailed(err.Error(), s.now())
		return false, FailureValidation
	}

	base, err := row.EnsureBaseTransactionID(req.TransactionID)
	if err != nil {
		log.Warn("Mapped transaction id is unusable",
			zap.String("transaction_id", req.TransactionID),
			zap.Error(err))
		row.MarkMappingFailed(err.Error(), s.now())
		return false, FailureValidation
	}

	for {
		attempt := req.WithTransactionID(payment.AttemptTransactionID(base, row.RetryCount))
		row.BeginAttempt(attempt, s.now())

		started := time.Now()
		resp, callErr := s.gateway.SubmitSale(ctx, attempt)
		s.metrics.RecordGatewayCall(ctx, OperationSale, time.Since(started), callErr)

		if callErr == nil && resp.Succeeded() {
			row.ApplyAccepted(resp)
			return false, FailureNone
		}

		failure := payment.Failure{Response: resp, Err: callErr}
		if !s.classifier.IsDuplicate(failure) {
			log.Warn("Gateway rejected submission",
				zap.String("transaction_id", attempt.TransactionID),
				zap.String("message", failure.Message()),
				zap.Error(callErr))
			row.Fail(failure.Message(), resp)
			if callErr != nil {
				return false, FailureTransport
			}
			return false, FailureDeclined
		}

		if s.reconcile(ctx, log, row, attempt.TransactionID) {
			return true, FailureNone
		}

		row.RecordDuplicate(resp)
		s.metrics.RecordDuplicateRetry(ctx)
		if row.DuplicateRetries > s.maxDuplicateRetries {
			log.Warn("Duplicate retry budget exhausted",
				zap.String("transaction_id", attempt.TransactionID),
				zap.Int("duplicate_retries", row.DuplicateRetries))
			row.Fail(ErrDuplicateRetriesExceededMessage, nil)
			return false, FailureDuplicateExhausted
		}
		log.Info("Duplicate transaction id, retrying with new id",
			zap.String("transaction_id", attempt.TransactionID),
			zap.Int("retry_count", row.RetryCount))
	}
}

// reconcile looks up transactionID and applies an approved or pending outcome to row.
// Reconciliation failures count as unresolved.
func (s *RowSubmissionService) reconcile(ctx context.Context, log *zap.Logger, row *upload.Row, transactionID string) bool {
	if s.reconciler == nil {
		s.metrics.RecordReconciliation(ctx, ReconcileUnresolved)
		return false
	}

	started := time.Now()
	resp, err := s.reconciler.Reconcile(ctx, &payment.ReconcileRequest{TransactionID: transactionID})
	s.metrics.RecordGatewayCall(ctx, OperationReconcile, time.Since(started), err)
	if err != nil {
		log.Warn("Reconciliation failed",
			zap.String("transaction_id", transactionID),
			zap.Error(err))
		s.metrics.RecordReconciliation(ctx, ReconcileError)
		return false
	}

	if !row.ApplyReconciled(resp) {
		s.metrics.RecordReconciliation(ctx, ReconcileUnresolved)
		return false
	}

	result := ReconcilePending
	if row.Status == upload.RowStatusApproved {
		result = ReconcileApproved
	}
	s.metrics.RecordReconciliation(ctx, result)
	log.Info("Duplicate resolved via existing transaction",
		zap.String("transaction_id", transactionID),
		zap.String("unique_id", resp.UniqueID),
		zap.String("status", resp.Status))
	return true
}

// resolveAccount returns the upload's account configuration, or nil when the
// upload has no account or the account has no stored configuration.
func (s *RowSubmissionService) resolveAccount(ctx context.Context, u *upload.Upload) (*account.Config, error) {
	if u.AccountID == nil || s.accounts == nil {
		return nil, nil
	}
	cfg, err := s.accounts.FindByID(ctx, *u.AccountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return cfg, nil
}
