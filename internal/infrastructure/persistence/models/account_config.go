package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/domain/account"
)

// AccountConfigModel is the persistence model for account configurations
type AccountConfigModel struct {
	BaseModel
	AgencyID         *uuid.UUID `gorm:"type:uuid;index"`
	Name             string     `gorm:"type:varchar(200);not null"`
	FieldMappingJSON string     `gorm:"column:field_mapping;type:jsonb;not null;default:'{}'"`
	MappingProfile   string     `gorm:"type:varchar(100)"`
	DefaultCurrency  string     `gorm:"type:varchar(3)"`
	Usage            string     `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (AccountConfigModel) TableName() string {
	return "account_configs"
}

// ToDomain converts the model to a domain account configuration
func (m *AccountConfigModel) ToDomain() (*account.Config, error) {
	cfg := &account.Config{
		BaseEntity:      m.BaseModel.ToDomain(),
		AgencyID:        m.AgencyID,
		Name:            m.Name,
		MappingProfile:  m.MappingProfile,
		DefaultCurrency: m.DefaultCurrency,
		Usage:           m.Usage,
	}
	if m.FieldMappingJSON != "" && m.FieldMappingJSON != "null" {
		if err := json.Unmarshal([]byte(m.FieldMappingJSON), &cfg.FieldMapping); err != nil {
			return nil, fmt.Errorf("decode field mapping of account %s: %w", m.ID, err)
		}
	}
	return cfg, nil
}

// AccountConfigModelFromDomain converts a domain account configuration to its model
func AccountConfigModelFromDomain(cfg *account.Config) (*AccountConfigModel, error) {
	m := &AccountConfigModel{
		AgencyID:        cfg.AgencyID,
		Name:            cfg.Name,
		MappingProfile:  cfg.MappingProfile,
		DefaultCurrency: cfg.DefaultCurrency,
		Usage:           cfg.Usage,
	}
	m.FromDomainBaseEntity(cfg.BaseEntity)
	mapping := cfg.FieldMapping
	if mapping == nil {
		mapping = account.FieldMapping{}
	}
	data, err := json.Marshal(mapping)
	if err != nil {
		return nil, fmt.Errorf("encode field mapping: %w", err)
	}
	m.FieldMappingJSON = string(data)
	return m, nil
}
