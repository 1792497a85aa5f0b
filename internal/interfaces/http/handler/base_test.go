package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sddportal/backend/internal/application/submission"
	"github.com/sddportal/backend/internal/domain/shared"
	"github.com/sddportal/backend/internal/domain/upload"
	"github.com/sddportal/backend/internal/interfaces/http/dto"
	"github.com/sddportal/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
)

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"upload not found", upload.ErrUploadNotFound, http.StatusNotFound, "UPLOAD_NOT_FOUND", "Upload not found"},
		{"row index", upload.ErrRowIndexOutOfRange, http.StatusBadRequest, "ROW_INDEX_OUT_OF_RANGE", "Row index out of range"},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Access to this resource is forbidden"},
		{"final row", submission.ErrRowFinal, http.StatusBadRequest, "INVALID_STATE", "Row is already approved or voided"},
		{"wrapped store failure hides cause", fmt.Errorf("%w: disk full", shared.ErrStoreFailure), http.StatusInternalServerError, "STORE_FAILURE", "An internal error occurred"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(middleware.RequestIDContextKey, "req-1")

			h := &BaseHandler{}
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decode[dto.Response](t, w)
			assert.False(t, resp.OK)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.message, resp.Error)
			assert.Equal(t, "req-1", resp.RequestID)
			assert.Len(t, c.Errors, 1)
		})
	}
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	(&BaseHandler{}).HandleError(c, nil)

	assert.False(t, c.Writer.Written())
}

func TestBaseHandler_SuccessVariants(t *testing.T) {
	h := &BaseHandler{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	h.Created(c, gin.H{"id": "x"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode[dto.Response](t, w).OK)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	h.SuccessWithMeta(c, []string{"a"}, 21, 2, 10)
	resp := decode[APIResponse[[]string]](t, w)
	assert.Equal(t, []string{"a"}, resp.Data)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestBaseHandler_CallerRequired(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := (&BaseHandler{}).caller(c)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, decode[ErrorResponse](t, w).Code)
}
