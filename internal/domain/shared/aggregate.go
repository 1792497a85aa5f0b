package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
}

// BaseAggregateRoot provides common fields for aggregate roots.
// Version is informational only: row writes are last-write-wins.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `json:"version"`
}

// GetVersion returns the aggregate version
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// OwnedAggregateRoot extends BaseAggregateRoot with organization ownership.
// A nil AgencyID and AccountID means the aggregate is unassigned.
type OwnedAggregateRoot struct {
	BaseAggregateRoot
	AgencyID  *uuid.UUID `json:"agencyId,omitempty"`
	AccountID *uuid.UUID `json:"accountId,omitempty"`
	CreatedBy *uuid.UUID `json:"createdBy,omitempty"`
}

// NewOwnedAggregateRoot creates an aggregate root owned by the given organization
func NewOwnedAggregateRoot(agencyID, accountID, createdBy *uuid.UUID) OwnedAggregateRoot {
	return OwnedAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		AgencyID:          agencyID,
		AccountID:         accountID,
		CreatedBy:         createdBy,
	}
}

// IsUnassigned reports whether no agency or account owns the aggregate
func (a *OwnedAggregateRoot) IsUnassigned() bool {
	return a.AgencyID == nil && a.AccountID == nil
}
