package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/domain/account"
	"github.com/sddportal/backend/internal/domain/shared"
	"github.com/sddportal/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAccountConfigRepository implements account.ConfigRepository using GORM
type GormAccountConfigRepository struct {
	db *gorm.DB
}

var _ account.ConfigRepository = (*GormAccountConfigRepository)(nil)

// NewGormAccountConfigRepository creates a new GormAccountConfigRepository
func NewGormAccountConfigRepository(db *gorm.DB) *GormAccountConfigRepository {
	return &GormAccountConfigRepository{db: db}
}

// FindByID finds an account configuration by account ID
func (r *GormAccountConfigRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Config, error) {
	var model models.AccountConfigModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// Save creates or updates an account configuration
func (r *GormAccountConfigRepository) Save(ctx context.Context, cfg *account.Config) error {
	model, err := models.AccountConfigModelFromDomain(cfg)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}
