package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// OwnedAggregateModel holds the persistence fields of an agency/account owned aggregate
type OwnedAggregateModel struct {
	BaseModel
	Version   int        `gorm:"not null;default:1"`
	AgencyID  *uuid.UUID `gorm:"type:uuid;index"`
	AccountID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

// FromDomainOwnedAggregateRoot populates the model from the domain aggregate root
func (m *OwnedAggregateModel) FromDomainOwnedAggregateRoot(a shared.OwnedAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
	m.AgencyID = a.AgencyID
	m.AccountID = a.AccountID
	m.CreatedBy = a.CreatedBy
}

// ToDomainOwnedAggregateRoot converts the model to the domain aggregate root
func (m *OwnedAggregateModel) ToDomainOwnedAggregateRoot() shared.OwnedAggregateRoot {
	return shared.OwnedAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		AgencyID:  m.AgencyID,
		AccountID: m.AccountID,
		CreatedBy: m.CreatedBy,
	}
}
