package submission

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/domain/account"
	"github.com/sddportal/backend/internal/domain/payment"
	"github.com/sddportal/backend/internal/domain/shared"
	"github.com/sddportal/backend/internal/domain/upload"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Upload Repository
// =============================================================================

type MockUploadRepository struct {
	mock.Mock
	mu    sync.Mutex
	saved []upload.Upload
}

func (m *MockUploadRepository) FindByID(ctx context.Context, id uuid.UUID) (*upload.Upload, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upload.Upload), args.Error(1)
}

func (m *MockUploadRepository) List(ctx context.Context, scope upload.Scope, filter shared.Filter) ([]upload.Upload, int64, error) {
	args := m.Called(ctx, scope, filter)
	return args.Get(0).([]upload.Upload), args.Get(1).(int64), args.Error(2)
}

func (m *MockUploadRepository) Save(ctx context.Context, u *upload.Upload) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUploadRepository) SaveRows(ctx context.Context, u *upload.Upload) error {
	m.mu.Lock()
	snapshot := *u
	snapshot.Rows = append([]upload.Row(nil), u.Rows...)
	m.saved = append(m.saved, snapshot)
	m.mu.Unlock()
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUploadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =============================================================================
// Mock Account Config Repository
// =============================================================================

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Config, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Config), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, cfg *account.Config) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// =============================================================================
// Mock Record Mapper
// =============================================================================

type MockRecordMapper struct {
	mock.Mock
}

func (m *MockRecordMapper) Map(ctx context.Context, record map[string]string, cfg *account.Config, ref account.RowRef) (*payment.SaleRequest, error) {
	args := m.Called(ctx, record, cfg, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.SaleRequest), args.Error(1)
}

// =============================================================================
// Mock Gateway / Reconciler
// =============================================================================

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) SubmitSale(ctx context.Context, req *payment.SaleRequest) (*payment.GatewayResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.GatewayResponse), args.Error(1)
}

func (m *MockGateway) VoidTransaction(ctx context.Context, req *payment.VoidRequest) (*payment.GatewayResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.GatewayResponse), args.Error(1)
}

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context, req *payment.ReconcileRequest) (*payment.GatewayResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.GatewayResponse), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

func superadmin() upload.Caller {
	return upload.Caller{UserID: uuid.New(), Role: upload.RoleSuperadmin}
}

func newTestUpload(n int) *upload.Upload {
	records := make([]upload.Record, n)
	for i := range records {
		records[i] = upload.Record{"transaction_id": "TX-1", "amount": "10.00", "iban": "DE89370400440532013000"}
	}
	u, err := upload.NewUpload("batch.csv", nil, nil, nil, records)
	if err != nil {
		panic(err)
	}
	return u
}

func duplicateResponse() *payment.GatewayResponse {
	return &payment.GatewayResponse{
		OK:      false,
		Status:  payment.StatusError,
		Message: "Transaction id is already used",
	}
}

func txID(id string) interface{} {
	return mock.MatchedBy(func(req *payment.SaleRequest) bool { return req.TransactionID == id })
}

func reconcileID(id string) interface{} {
	return mock.MatchedBy(func(req *payment.ReconcileRequest) bool { return req.TransactionID == id })
}
