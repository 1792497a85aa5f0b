package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/domain/payment"
	"github.com/sddportal/backend/internal/domain/shared"
	"github.com/sddportal/backend/internal/domain/upload"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultVoidPacing is the delay between consecutive void calls of one batch
const DefaultVoidPacing = 300 * time.Millisecond

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// VoidService voids every approved row of an upload, one gateway call at a time
type VoidService struct {
	uploads  upload.Repository
	gateway  payment.Gateway
	metrics  Metrics
	pacing   time.Duration
	usage    string
	remoteIP string
	now      func() time.Time
	sleep    Sleeper
	inflight singleflight.Group
	logger   *zap.Logger
}

// VoidServiceConfig holds the dependencies of VoidService
type VoidServiceConfig struct {
	Uploads upload.Repository
	Gateway payment.Gateway
	Metrics Metrics
	// Pacing defaults to DefaultVoidPacing when zero; negative disables pacing
	Pacing   time.Duration
	Usage    string
	RemoteIP string
	Now      func() time.Time
	Sleep    Sleeper
	Logger   *zap.Logger
}

// NewVoidService creates a new VoidService
func NewVoidService(config VoidServiceConfig) *VoidService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	pacing := config.Pacing
	if pacing == 0 {
		pacing = DefaultVoidPacing
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	sleep := config.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	usage := config.Usage
	if usage == "" {
		usage = "Void"
	}

	return &VoidService{
		uploads:  config.Uploads,
		gateway:  config.Gateway,
		metrics:  metrics,
		pacing:   pacing,
		usage:    usage,
		remoteIP: config.RemoteIP,
		now:      now,
		sleep:    sleep,
		logger:   logger,
	}
}

// VoidApproved voids all approved rows of the upload. Per-row failures are
// itemized in the result and never abort the batch. Once ctx is done no further
// gateway calls are made; the remaining rows are marked failed and the rows
// are still persisted. Concurrent calls for the same upload within this
// process share one run.
func (s *VoidService) VoidApproved(ctx context.Context, caller upload.Caller, uploadID uuid.UUID) (*VoidResult, error) {
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

	v, err, joined := s.inflight.Do(uploadID.String(), func() (interface{}, error) {
		return s.voidUpload(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	if joined {
		s.logger.Info("Joined in-flight void batch", zap.String("upload_id", uploadID.String()))
	}
	return v.(*VoidResult), nil
}

func (s *VoidService) voidUpload(ctx context.Context, u *upload.Upload) (*VoidResult, error) {
	log := s.logger.With(zap.String("upload_id", u.ID.String()))

	indexes := u.ApprovedRowIndexes()
	result := &VoidResult{
		UploadID: u.ID.String(),
		Results:  make([]VoidItem, 0, len(indexes)),
	}

	called := false
	for _, idx := range indexes {
		row := &u.Rows[idx]
		item := VoidItem{
			RowIndex:      idx,
			TransactionID: row.TransactionID(),
			UniqueID:      row.UniqueID(),
		}

		if item.UniqueID == "" || item.TransactionID == "" {
			row.MarkVoidFailed(ErrMissingVoidIdentifiersMessage, nil)
			item.Error = ErrMissingVoidIdentifiersMessage
			result.Results = append(result.Results, item)
			result.FailedCount++
			s.metrics.RecordVoid(ctx, "skipped")
			continue
		}

		if called {
			if err := s.sleep(ctx, s.pacing); err != nil {
				log.Warn("Void pacing interrupted", zap.Error(err))
			}
		}
		if err := ctx.Err(); err != nil {
			msg := fmt.Sprintf("%s: %v", ErrVoidInterruptedMessage, err)
			row.MarkVoidFailed(msg, nil)
			item.Error = msg
			result.Results = append(result.Results, item)
			result.FailedCount++
			s.metrics.RecordVoid(ctx, "interrupted")
			continue
		}
		called = true

		s.voidRow(ctx, log, row, &item)
		if item.Success {
			result.VoidedCount++
		} else {
			result.FailedCount++
		}
		result.Results = append(result.Results, item)
	}

	// Voids already executed by the gateway must be stored even when the caller went away.
	u.RowsChanged()
	if err := s.uploads.SaveRows(context.WithoutCancel(ctx), u); err != nil {
		log.Error("Failed to persist void results", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	result.OK = true
	result.ApprovedCount = u.ApprovedCount
	result.TotalVoided = u.VoidedCount

	log.Info("Void batch finished",
		zap.Int("selected", len(indexes)),
		zap.Int("voided", result.VoidedCount),
		zap.Int("failed", result.FailedCount))
	return result, nil
}

func (s *VoidService) voidRow(ctx context.Context, log *zap.Logger, row *upload.Row, item *VoidItem) {
	now := s.now()
	req := &payment.VoidRequest{
		TransactionID: payment.VoidTransactionID(item.TransactionID, now),
		ReferenceID:   item.UniqueID,
		Usage:         s.usage,
		RemoteIP:      s.remoteIP,
	}
	item.VoidTransactionID = req.TransactionID

	started := time.Now()
	resp, err := s.gateway.VoidTransaction(ctx, req)
	s.metrics.RecordGatewayCall(ctx, OperationVoid, time.Since(started), err)

	if err == nil && resp == nil {
		err = payment.ErrGatewayInvalidResponse
	}
	if err != nil {
		log.Warn("Void transport failure",
			zap.Int("row_index", item.RowIndex),
			zap.String("reference_id", req.ReferenceID),
			zap.Error(err))
		row.MarkVoidFailed(err.Error(), nil)
		item.Error = err.Error()
		s.metrics.RecordVoid(ctx, "transport_error")
		return
	}

	item.Status = resp.Status
	if resp.OK && resp.IsApproved() {
		if markErr := row.MarkVoided(resp, now); markErr == nil {
			item.Success = true
			s.metrics.RecordVoid(ctx, "voided")
			return
		}
	}

	msg := resp.ErrorMessage()
	log.Warn("Void not approved",
		zap.Int("row_index", item.RowIndex),
		zap.String("reference_id", req.ReferenceID),
		zap.String("status", resp.Status),
		zap.String("message", msg))
	row.MarkVoidFailed(msg, resp)
	item.Error = msg
	s.metrics.RecordVoid(ctx, "declined")
}
