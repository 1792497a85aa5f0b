package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/application/submission"
	"github.com/sddportal/backend/internal/domain/upload"
	"github.com/sddportal/backend/internal/infrastructure/cache"
	"github.com/sddportal/backend/internal/infrastructure/logger"
	"github.com/sddportal/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// DefaultRowLockTTL bounds how long one submission may hold its row
const DefaultRowLockTTL = 2 * time.Minute

// RowSubmitter submits one upload row
type RowSubmitter interface {
	SubmitRow(ctx context.Context, caller upload.Caller, uploadID uuid.UUID, rowIndex int) (*submission.SubmitResult, error)
}

// ApprovedVoider voids every approved row of an upload
type ApprovedVoider interface {
	VoidApproved(ctx context.Context, caller upload.Caller, uploadID uuid.UUID) (*submission.VoidResult, error)
}

// SubmissionHandler serves row submission and batch void
type SubmissionHandler struct {
	BaseHandler
	submitter RowSubmitter
	voider    ApprovedVoider
	locks     cache.RowLock
	lockTTL   time.Duration
}

// NewSubmissionHandler creates a new SubmissionHandler. A zero lockTTL uses DefaultRowLockTTL.
func NewSubmissionHandler(submitter RowSubmitter, voider ApprovedVoider, locks cache.RowLock, lockTTL time.Duration) *SubmissionHandler {
	if lockTTL <= 0 {
		lockTTL = DefaultRowLockTTL
	}
	return &SubmissionHandler{
		submitter: submitter,
		voider:    voider,
		locks:     locks,
		lockTTL:   lockTTL,
	}
}

// submitResponse adds the failure code to a failed submission result
type submitResponse struct {
	*submission.SubmitResult
	Code string `json:"code,omitempty"`
}

var failureCodes = map[submission.FailureKind]string{
	submission.FailureValidation:         dto.ErrCodeRowValidation,
	submission.FailureDeclined:           dto.ErrCodeRowDeclined,
	submission.FailureTransport:          dto.ErrCodeRowTransport,
	submission.FailureDuplicateExhausted: dto.ErrCodeRowDuplicateExceeded,
}

// failureCode maps a failure kind to its error code; unknown kinds count as declines
func failureCode(kind submission.FailureKind) string {
	if code, ok := failureCodes[kind]; ok {
		return code
	}
	return dto.ErrCodeRowDeclined
}

// SubmitRow handles POST /rows/:uploadId/:rowIndex/submit.
// The row lock is held for the whole call; a held lock answers 409.
func (h *SubmissionHandler) SubmitRow(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	uploadID, ok := h.uuidParam(c, "uploadId")
	if !ok {
		return
	}
	rowIndex, err := strconv.Atoi(c.Param("rowIndex"))
	if err != nil {
		h.BadRequest(c, "Invalid rowIndex")
		return
	}

	log := logger.FromGin(c).With(
		zap.String("upload_id", uploadID.String()),
		zap.Int("row_index", rowIndex))

	ctx := c.Request.Context()
	lease, acquired, err := h.locks.TryAcquire(ctx, cache.RowKey(uploadID, rowIndex), h.lockTTL)
	if err != nil {
		log.Error("Row lock unavailable", zap.Error(err))
		h.ErrorWithCode(c, dto.ErrCodeLockUnavailable, "Submission lock unavailable, retry later")
		return
	}
	if !acquired {
		h.ErrorWithCode(c, dto.ErrCodeSubmissionInProgress, "Row is already being submitted")
		return
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := h.locks.Release(releaseCtx, lease); err != nil {
			log.Warn("Failed to release row lock", zap.Error(err))
		}
	}()

	result, err := h.submitter.SubmitRow(ctx, caller, uploadID, rowIndex)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.OK {
		c.JSON(http.StatusOK, submitResponse{SubmitResult: result})
		return
	}
	code := failureCode(result.FailureKind)
	c.JSON(dto.GetHTTPStatus(code), submitResponse{SubmitResult: result, Code: code})
}

// VoidApproved handles POST /uploads/:id/void-approved
func (h *SubmissionHandler) VoidApproved(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	uploadID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	result, err := h.voider.VoidApproved(c.Request.Context(), caller, uploadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
