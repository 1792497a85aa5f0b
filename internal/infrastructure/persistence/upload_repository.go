package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/domain/shared"
	"github.com/sddportal/backend/internal/domain/upload"
	"github.com/sddportal/backend/internal/infrastructure/persistence/datascope"
	"github.com/sddportal/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUploadRepository implements upload.Repository using GORM
type GormUploadRepository struct {
	db *gorm.DB
}

var _ upload.Repository = (*GormUploadRepository)(nil)

// NewGormUploadRepository creates a new GormUploadRepository
func NewGormUploadRepository(db *gorm.DB) *GormUploadRepository {
	return &GormUploadRepository{db: db}
}

// FindByID finds an upload by its ID
func (r *GormUploadRepository) FindByID(ctx context.Context, id uuid.UUID) (*upload.Upload, error) {
	var model models.UploadModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, upload.ErrUploadNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// List returns the uploads visible in scope. Records are not loaded.
func (r *GormUploadRepository) List(ctx context.Context, scope upload.Scope, filter shared.Filter) ([]upload.Upload, int64, error) {
	if scope.IsEmpty() {
		return []upload.Upload{}, 0, nil
	}

	query := r.db.WithContext(ctx).Model(&models.UploadModel{}).Scopes(datascope.Apply(scope))
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(file_name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, UploadSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.UploadModel
	if err := query.Omit("records").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	uploads := make([]upload.Upload, 0, len(rows))
	for i := range rows {
		u, err := rows[i].ToDomain()
		if err != nil {
			return nil, 0, err
		}
		uploads = append(uploads, *u)
	}
	return uploads, total, nil
}

// Save creates or replaces the whole upload
func (r *GormUploadRepository) Save(ctx context.Context, u *upload.Upload) error {
	model, err := models.UploadModelFromDomain(u)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveRows writes the row array and derived counts in one UPDATE
func (r *GormUploadRepository) SaveRows(ctx context.Context, u *upload.Upload) error {
	rows, err := models.EncodeRows(u.Rows)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&models.UploadModel{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"rows":           rows,
			"approved_count": u.ApprovedCount,
			"voided_count":   u.VoidedCount,
			"version":        u.Version,
			"updated_at":     u.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("save rows of upload %s: %w", u.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return upload.ErrUploadNotFound
	}
	return nil
}

// Delete deletes an upload
func (r *GormUploadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.UploadModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return upload.ErrUploadNotFound
	}
	return nil
}
