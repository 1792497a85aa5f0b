package upload

import (
	"context"

	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/domain/account"
	"github.com/sddportal/backend/internal/domain/shared"
	"github.com/sddportal/backend/internal/domain/upload"
	"github.com/stretchr/testify/mock"
)

type MockUploadRepository struct {
	mock.Mock
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
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]upload.Upload), args.Get(1).(int64), args.Error(2)
}

func (m *MockUploadRepository) Save(ctx context.Context, u *upload.Upload) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUploadRepository) SaveRows(ctx context.Context, u *upload.Upload) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUploadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

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
	return m.Called(ctx, cfg).Error(0)
}

type MockParser struct {
	mock.Mock
}

func (m *MockParser) Parse(fileName string, data []byte) ([]map[string]string, error) {
	args := m.Called(fileName, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]string), args.Error(1)
}

type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Put(ctx context.Context, key, contentType string, data []byte) error {
	return m.Called(ctx, key, contentType, data).Error(0)
}

func (m *MockArchive) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
