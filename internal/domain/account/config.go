package account

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/domain/payment"
	"github.com/sddportal/backend/internal/domain/shared"
)

// Target fields a record column can be mapped to
const (
	FieldTransactionID = "transaction_id"
	FieldAmount        = "amount"
	FieldCurrency      = "currency"
	FieldIBAN          = "iban"
	FieldBIC           = "bic"
	FieldFirstName     = "first_name"
	FieldLastName      = "last_name"
	FieldEmail         = "email"
	FieldUsage         = "usage"
	FieldAddress1      = "address1"
	FieldZipCode       = "zip_code"
	FieldCity          = "city"
	FieldCountry       = "country"
)

// KnownFields lists every mappable target field
var KnownFields = []string{
	FieldTransactionID, FieldAmount, FieldCurrency, FieldIBAN, FieldBIC,
	FieldFirstName, FieldLastName, FieldEmail, FieldUsage,
	FieldAddress1, FieldZipCode, FieldCity, FieldCountry,
}

// FieldMapping maps a target field to the source column name in the uploaded file
type FieldMapping map[string]string

// DefaultFieldMapping returns the mapping used when an account has none configured
func DefaultFieldMapping() FieldMapping {
	return FieldMapping{
		FieldTransactionID: "transaction_id",
		FieldAmount:        "amount",
		FieldCurrency:      "currency",
		FieldIBAN:          "iban",
		FieldBIC:           "bic",
		FieldFirstName:     "first_name",
		FieldLastName:      "last_name",
		FieldEmail:         "email",
		FieldUsage:         "usage",
		FieldAddress1:      "address1",
		FieldZipCode:       "zip_code",
		FieldCity:          "city",
		FieldCountry:       "country",
	}
}

// IsEmpty reports whether no column is mapped
func (m FieldMapping) IsEmpty() bool {
	for _, col := range m {
		if strings.TrimSpace(col) != "" {
			return false
		}
	}
	return true
}

// Column returns the source column for a target field
func (m FieldMapping) Column(field string) (string, bool) {
	col, ok := m[field]
	col = strings.TrimSpace(col)
	return col, ok && col != ""
}

// Validate ensures only known target fields are mapped and amount/iban are present
func (m FieldMapping) Validate() error {
	known := make(map[string]struct{}, len(KnownFields))
	for _, f := range KnownFields {
		known[f] = struct{}{}
	}
	for field := range m {
		if _, ok := known[field]; !ok {
			return shared.NewDomainError("INVALID_FIELD_MAPPING", "Unknown mapping field: "+field)
		}
	}
	for _, required := range []string{FieldAmount, FieldIBAN} {
		if _, ok := m.Column(required); !ok {
			return shared.NewDomainError("INVALID_FIELD_MAPPING", "Mapping must define field: "+required)
		}
	}
	return nil
}

// Config is the per-account (merchant) configuration used when mapping records
type Config struct {
	shared.BaseEntity
	AgencyID        *uuid.UUID   `json:"agencyId,omitempty"`
	Name            string       `json:"name"`
	FieldMapping    FieldMapping `json:"fieldMapping,omitempty"`
	MappingProfile  string       `json:"mappingProfile,omitempty"`
	DefaultCurrency string       `json:"defaultCurrency,omitempty"`
	Usage           string       `json:"usage,omitempty"`
}

// NewConfig creates an account configuration
func NewConfig(agencyID *uuid.UUID, name string, mapping FieldMapping) (*Config, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if !mapping.IsEmpty() {
		if err := mapping.Validate(); err != nil {
			return nil, err
		}
	}
	return &Config{
		BaseEntity:   shared.NewBaseEntity(),
		AgencyID:     agencyID,
		Name:         name,
		FieldMapping: mapping,
	}, nil
}

// SetDefaultCurrency sets the currency used when a record has none
func (c *Config) SetDefaultCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency != "" && len(currency) != 3 {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	c.DefaultCurrency = currency
	c.UpdatedAt = time.Now()
	return nil
}

// EffectiveMapping returns the configured mapping, or fallback when none is configured
func (c *Config) EffectiveMapping(fallback FieldMapping) FieldMapping {
	if c == nil || c.FieldMapping.IsEmpty() {
		return fallback
	}
	return c.FieldMapping
}

// RowRef identifies the record being mapped
type RowRef struct {
	UploadID uuid.UUID
	RowIndex int
	// Ordinal is the row's stable creation position, see upload.Row
	Ordinal int
}

// RecordMapper turns a raw uploaded record into a validated sale request.
// cfg may be nil, in which case the default mapping applies.
type RecordMapper interface {
	Map(ctx context.Context, record map[string]string, cfg *Config, ref RowRef) (*payment.SaleRequest, error)
}

// ConfigRepository loads account configurations
type ConfigRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Config, error)
	Save(ctx context.Context, cfg *Config) error
}
