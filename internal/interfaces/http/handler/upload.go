package handler

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	uploadapp "github.com/sddportal/backend/internal/application/upload"
	"github.com/sddportal/backend/internal/domain/shared"
	"github.com/sddportal/backend/internal/domain/upload"
	"github.com/sddportal/backend/internal/interfaces/http/dto"
	"github.com/sddportal/backend/internal/interfaces/http/middleware"
)

// DefaultMaxUploadSize caps uploaded files when no limit is configured
const DefaultMaxUploadSize int64 = 10 << 20

// UploadService is the upload lifecycle the handler depends on
type UploadService interface {
	CreateUpload(ctx context.Context, caller upload.Caller, input uploadapp.CreateUploadInput) (*uploadapp.UploadDetail, error)
	GetUpload(ctx context.Context, caller upload.Caller, id uuid.UUID) (*uploadapp.UploadDetail, error)
	ListUploads(ctx context.Context, caller upload.Caller, filter shared.Filter) (shared.Paginated[uploadapp.UploadSummary], error)
	DeleteRecord(ctx context.Context, caller upload.Caller, id uuid.UUID, index int) (*uploadapp.UploadDetail, error)
	DeleteUpload(ctx context.Context, caller upload.Caller, id uuid.UUID) error
}

// UploadHandler serves upload CRUD
type UploadHandler struct {
	BaseHandler
	service       UploadService
	maxUploadSize int64
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(service UploadService, maxUploadSize int64) *UploadHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &UploadHandler{service: service, maxUploadSize: maxUploadSize}
}

// Create handles POST /uploads with a multipart "file" field and optional
// agency_id and account_id form fields.
func (h *UploadHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Multipart field \"file\" is required")
		return
	}
	if fh.Size > h.maxUploadSize {
		h.ErrorWithCode(c, dto.ErrCodeRequestTooLarge, "File exceeds maximum upload size")
		return
	}

	agencyID, ok := h.optionalUUIDForm(c, "agency_id")
	if !ok {
		return
	}
	accountID, ok := h.optionalUUIDForm(c, "account_id")
	if !ok {
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.BadRequest(c, "Uploaded file could not be read")
		return
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, h.maxUploadSize+1))
	if err != nil {
		h.BadRequest(c, "Uploaded file could not be read")
		return
	}
	if int64(len(content)) > h.maxUploadSize {
		h.ErrorWithCode(c, dto.ErrCodeRequestTooLarge, "File exceeds maximum upload size")
		return
	}

	detail, err := h.service.CreateUpload(c.Request.Context(), caller, uploadapp.CreateUploadInput{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
		AgencyID:    agencyID,
		AccountID:   accountID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, detail)
}

func (h *UploadHandler) optionalUUIDForm(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.PostForm(name))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &id, true
}

// List handles GET /uploads
func (h *UploadHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.service.ListUploads(c.Request.Context(), caller, shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get handles GET /uploads/:id
func (h *UploadHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.GetUpload(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Delete handles DELETE /uploads/:id
func (h *UploadHandler) Delete(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteUpload(c.Request.Context(), caller, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, DeletedData{ID: id.String(), Deleted: true})
}

// DeleteRecord handles DELETE /uploads/:id/records/:index. Later rows shift
// down by one, so clients must refresh their indexes from the response.
func (h *UploadHandler) DeleteRecord(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.BadRequest(c, "Invalid index")
		return
	}

	detail, err := h.service.DeleteRecord(c.Request.Context(), caller, id, index)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}
