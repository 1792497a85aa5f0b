package upload

import (
	"github.com/google/uuid"
)

// Role is the caller's portal role
type Role string

const (
	RoleSuperadmin   Role = "superadmin"
	RoleAgencyAdmin  Role = "agency_admin"
	RoleAccountAdmin Role = "account_admin"
	RoleViewer       Role = "viewer"
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperadmin, RoleAgencyAdmin, RoleAccountAdmin, RoleViewer:
		return true
	}
	return false
}

// CanWrite reports whether the role may mutate uploads at all
func (r Role) CanWrite() bool {
	return r == RoleSuperadmin || r == RoleAgencyAdmin || r == RoleAccountAdmin
}

// Caller is the capability every operation receives explicitly
type Caller struct {
	UserID    uuid.UUID
	Role      Role
	AgencyID  *uuid.UUID
	AccountID *uuid.UUID
}

func sameID(a, b *uuid.UUID) bool {
	return a != nil && b != nil && *a == *b
}

// owns reports whether the caller's organization owns the upload
func (c Caller) owns(u *Upload) bool {
	switch c.Role {
	case RoleSuperadmin:
		return true
	case RoleAgencyAdmin:
		return sameID(c.AgencyID, u.AgencyID)
	case RoleAccountAdmin:
		return sameID(c.AccountID, u.AccountID)
	case RoleViewer:
		if c.AccountID != nil {
			return sameID(c.AccountID, u.AccountID)
		}
		return sameID(c.AgencyID, u.AgencyID)
	}
	return false
}

// CanRead reports whether the caller may see the upload
func (c Caller) CanRead(u *Upload) bool {
	if u == nil || !c.Role.IsValid() {
		return false
	}
	return c.owns(u)
}

// CanWrite reports whether the caller may submit, void or delete within the upload
func (c Caller) CanWrite(u *Upload) bool {
	if u == nil || !c.Role.CanWrite() {
		return false
	}
	return c.owns(u)
}

// Scope restricts listing queries to what the caller may read
type Scope struct {
	All       bool
	AgencyID  *uuid.UUID
	AccountID *uuid.UUID
}

// Scope returns the listing scope for the caller
func (c Caller) Scope() Scope {
	switch c.Role {
	case RoleSuperadmin:
		return Scope{All: true}
	case RoleAgencyAdmin:
		return Scope{AgencyID: c.AgencyID}
	case RoleAccountAdmin:
		return Scope{AccountID: c.AccountID}
	case RoleViewer:
		if c.AccountID != nil {
			return Scope{AccountID: c.AccountID}
		}
		return Scope{AgencyID: c.AgencyID}
	}
	return Scope{}
}

// IsEmpty reports whether the scope matches nothing
func (s Scope) IsEmpty() bool {
	return !s.All && s.AgencyID == nil && s.AccountID == nil
}
