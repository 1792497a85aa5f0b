// Package upload manages the lifecycle of uploaded debit batches.
package upload

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/domain/account"
	"github.com/sddportal/backend/internal/domain/shared"
	"github.com/sddportal/backend/internal/domain/upload"
	"go.uber.org/zap"
)

// ErrInvalidFile is returned when the uploaded file cannot be read as records
var ErrInvalidFile = shared.NewDomainError("INVALID_FILE", "Uploaded file could not be parsed")

// RecordParser turns an uploaded file into header-keyed records
type RecordParser interface {
	Parse(fileName string, data []byte) ([]map[string]string, error)
}

// Archive stores the raw uploaded files
type Archive interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Service handles upload creation, reads and deletions
type Service struct {
	uploads  upload.Repository
	accounts account.ConfigRepository
	parser   RecordParser
	archive  Archive
	logger   *zap.Logger
}

// ServiceConfig holds the dependencies of Service. Accounts and Archive are optional.
type ServiceConfig struct {
	Uploads  upload.Repository
	Accounts account.ConfigRepository
	Parser   RecordParser
	Archive  Archive
	Logger   *zap.Logger
}

// NewService creates a new upload service
func NewService(config ServiceConfig) *Service {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		uploads:  config.Uploads,
		accounts: config.Accounts,
		parser:   config.Parser,
		archive:  config.Archive,
		logger:   logger,
	}
}

// CreateUpload parses the file, archives it and stores one pending row per record
func (s *Service) CreateUpload(ctx context.Context, caller upload.Caller, input CreateUploadInput) (*UploadDetail, error) {
	agencyID, accountID, err := s.resolveOwner(ctx, caller, input.AgencyID, input.AccountID)
	if err != nil {
		return nil, err
	}

	parsed, err := s.parser.Parse(input.FileName, input.Content)
	if err != nil {
		return nil, shared.NewDomainError(ErrInvalidFile.Code, err.Error())
	}
	records := make([]upload.Record, len(parsed))
	for i, r := range parsed {
		records[i] = upload.Record(r)
	}

	createdBy := caller.UserID
	u, err := upload.NewUpload(input.FileName, agencyID, accountID, &createdBy, records)
	if err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String("upload_id", u.ID.String()))
	if s.archive != nil {
		key := upload.StorageKeyFor(u.ID, input.FileName)
		if err := s.archive.Put(ctx, key, input.ContentType, input.Content); err != nil {
			log.Warn("Failed to archive upload file", zap.String("key", key), zap.Error(err))
		} else {
			u.StorageKey = key
		}
	}

	if err := s.uploads.Save(ctx, u); err != nil {
		s.removeArchived(ctx, log, u.StorageKey)
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreFailure, err)
	}

	log.Info("Upload created",
		zap.String("file_name", u.FileName),
		zap.Int("records", len(u.Records)))
	return ToUploadDetail(u), nil
}

// resolveOwner applies the caller's organization to the requested owner
func (s *Service) resolveOwner(ctx context.Context, caller upload.Caller, agencyID, accountID *uuid.UUID) (*uuid.UUID, *uuid.UUID, error) {
	switch caller.Role {
	case upload.RoleSuperadmin:
	case upload.RoleAgencyAdmin:
		if agencyID != nil && (caller.AgencyID == nil || *agencyID != *caller.AgencyID) {
			return nil, nil, shared.ErrForbidden
		}
		agencyID = caller.AgencyID
	case upload.RoleAccountAdmin:
		if accountID != nil && (caller.AccountID == nil || *accountID != *caller.AccountID) {
			return nil, nil, shared.ErrForbidden
		}
		accountID = caller.AccountID
		agencyID = caller.AgencyID
	default:
		return nil, nil, shared.ErrForbidden
	}

	if accountID == nil || s.accounts == nil {
		return agencyID, accountID, nil
	}
	cfg, err := s.accounts.FindByID(ctx, *accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return agencyID, accountID, nil
		}
		return nil, nil, fmt.Errorf("%w: %v", shared.ErrStoreFailure, err)
	}
	if cfg.AgencyID != nil {
		if agencyID != nil && *agencyID != *cfg.AgencyID {
			return nil, nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Account does not belong to agency")
		}
		agencyID = cfg.AgencyID
	}
	return agencyID, accountID, nil
}

// GetUpload returns the upload with records and rows
func (s *Service) GetUpload(ctx context.Context, caller upload.Caller, id uuid.UUID) (*UploadDetail, error) {
	u, err := s.load(ctx, id, caller.CanRead)
	if err != nil {
		return nil, err
	}
	return ToUploadDetail(u), nil
}

// ListUploads returns the uploads visible to the caller, newest first by default
func (s *Service) ListUploads(ctx context.Context, caller upload.Caller, filter shared.Filter) (shared.Paginated[UploadSummary], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = shared.DefaultFilter().PageSize
	}

	uploads, total, err := s.uploads.List(ctx, caller.Scope(), filter)
	if err != nil {
		return shared.Paginated[UploadSummary]{}, fmt.Errorf("%w: %v", shared.ErrStoreFailure, err)
	}
	items := make([]UploadSummary, len(uploads))
	for i := range uploads {
		items[i] = ToUploadSummary(&uploads[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// DeleteRecord removes the record at index together with its row.
// Later rows shift down by one index.
func (s *Service) DeleteRecord(ctx context.Context, caller upload.Caller, id uuid.UUID, index int) (*UploadDetail, error) {
	u, err := s.load(ctx, id, caller.CanWrite)
	if err != nil {
		return nil, err
	}
	if err := u.DeleteRecord(index); err != nil {
		return nil, err
	}
	if err := s.uploads.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreFailure, err)
	}

	s.logger.Info("Upload record deleted",
		zap.String("upload_id", id.String()),
		zap.Int("row_index", index),
		zap.Int("remaining", len(u.Records)))
	return ToUploadDetail(u), nil
}

// DeleteUpload removes the upload and its archived file. Archive failures are logged only.
func (s *Service) DeleteUpload(ctx context.Context, caller upload.Caller, id uuid.UUID) error {
	u, err := s.load(ctx, id, caller.CanWrite)
	if err != nil {
		return err
	}
	if err := s.uploads.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStoreFailure, err)
	}

	log := s.logger.With(zap.String("upload_id", id.String()))
	s.removeArchived(ctx, log, u.StorageKey)
	log.Info("Upload deleted")
	return nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID, allowed func(*upload.Upload) bool) (*upload.Upload, error) {
	u, err := s.uploads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !allowed(u) {
		return nil, shared.ErrForbidden
	}
	return u, nil
}

func (s *Service) removeArchived(ctx context.Context, log *zap.Logger, key string) {
	if s.archive == nil || key == "" {
		return
	}
	if err := s.archive.Delete(ctx, key); err != nil {
		log.Warn("Failed to delete archived upload file", zap.String("key", key), zap.Error(err))
	}
}
