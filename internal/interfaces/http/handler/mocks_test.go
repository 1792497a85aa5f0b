package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/application/submission"
	uploadapp "github.com/sddportal/backend/internal/application/upload"
	"github.com/sddportal/backend/internal/domain/shared"
	"github.com/sddportal/backend/internal/domain/upload"
	"github.com/sddportal/backend/internal/infrastructure/cache"
	"github.com/sddportal/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockRowSubmitter struct {
	mock.Mock
}

func (m *MockRowSubmitter) SubmitRow(ctx context.Context, caller upload.Caller, uploadID uuid.UUID, rowIndex int) (*submission.SubmitResult, error) {
	args := m.Called(ctx, caller, uploadID, rowIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*submission.SubmitResult), args.Error(1)
}

type MockApprovedVoider struct {
	mock.Mock
}

func (m *MockApprovedVoider) VoidApproved(ctx context.Context, caller upload.Caller, uploadID uuid.UUID) (*submission.VoidResult, error) {
	args := m.Called(ctx, caller, uploadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*submission.VoidResult), args.Error(1)
}

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) CreateUpload(ctx context.Context, caller upload.Caller, input uploadapp.CreateUploadInput) (*uploadapp.UploadDetail, error) {
	args := m.Called(ctx, caller, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uploadapp.UploadDetail), args.Error(1)
}

func (m *MockUploadService) GetUpload(ctx context.Context, caller upload.Caller, id uuid.UUID) (*uploadapp.UploadDetail, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uploadapp.UploadDetail), args.Error(1)
}

func (m *MockUploadService) ListUploads(ctx context.Context, caller upload.Caller, filter shared.Filter) (shared.Paginated[uploadapp.UploadSummary], error) {
	args := m.Called(ctx, caller, filter)
	return args.Get(0).(shared.Paginated[uploadapp.UploadSummary]), args.Error(1)
}

func (m *MockUploadService) DeleteRecord(ctx context.Context, caller upload.Caller, id uuid.UUID, index int) (*uploadapp.UploadDetail, error) {
	args := m.Called(ctx, caller, id, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uploadapp.UploadDetail), args.Error(1)
}

func (m *MockUploadService) DeleteUpload(ctx context.Context, caller upload.Caller, id uuid.UUID) error {
	return m.Called(ctx, caller, id).Error(0)
}

// failingLock is a row lock whose backend is down
type failingLock struct{}

func (failingLock) TryAcquire(context.Context, string, time.Duration) (*cache.Lease, bool, error) {
	return nil, false, errors.New("dial tcp: connection refused")
}

func (failingLock) Release(context.Context, *cache.Lease) error { return nil }

func testCaller() upload.Caller {
	agency := uuid.New()
	return upload.Caller{UserID: uuid.New(), Role: upload.RoleAgencyAdmin, AgencyID: &agency}
}

// newTestEngine returns an engine that authenticates every request as caller.
// A zero caller leaves the request unauthenticated.
func newTestEngine(caller upload.Caller) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(func(c *gin.Context) {
		if caller.UserID != uuid.Nil {
			middleware.SetCaller(c, caller)
		}
		c.Next()
	})
	return engine
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}
