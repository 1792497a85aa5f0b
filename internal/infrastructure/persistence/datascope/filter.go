// Package datascope restricts GORM queries to the rows a caller may read.
//
// Uploads belong to an agency and optionally to one of its accounts. A scope
// is derived from the caller's role:
//   - All: superadmins see every row
//   - AccountID: account admins, and viewers bound to an account
//   - AgencyID: agency admins, and viewers bound only to an agency
//
// An empty scope matches nothing.
//
// Usage:
//
//	query := db.Model(&models.UploadModel{}).Scopes(datascope.Apply(caller.Scope()))
package datascope

import (
	"context"

	"github.com/sddportal/backend/internal/domain/upload"
	"gorm.io/gorm"
)

// Columns names the ownership columns of a scoped table
type Columns struct {
	Agency  string
	Account string
}

// DefaultColumns are the ownership columns of the uploads table
var DefaultColumns = Columns{Agency: "agency_id", Account: "account_id"}

type contextKey struct{}

// WithScope stores scope in ctx
func WithScope(ctx context.Context, scope upload.Scope) context.Context {
	return context.WithValue(ctx, contextKey{}, scope)
}

// FromContext returns the scope stored in ctx. A context without a scope
// yields the empty scope.
func FromContext(ctx context.Context) upload.Scope {
	if ctx == nil {
		return upload.Scope{}
	}
	scope, _ := ctx.Value(contextKey{}).(upload.Scope)
	return scope
}

// Apply returns a GORM scope filtering on the default ownership columns
func Apply(scope upload.Scope) func(*gorm.DB) *gorm.DB {
	return ApplyColumns(scope, DefaultColumns)
}

// ApplyColumns returns a GORM scope filtering on cols.
// Account scope wins over agency scope when both are set.
func ApplyColumns(scope upload.Scope, cols Columns) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case scope.All:
			return db
		case scope.AccountID != nil:
			return db.Where(cols.Account+" = ?", *scope.AccountID)
		case scope.AgencyID != nil:
			return db.Where(cols.Agency+" = ?", *scope.AgencyID)
		default:
			return db.Where("1 = 0")
		}
	}
}

// FromCallerContext applies the scope carried by the query's context
func FromCallerContext(db *gorm.DB) *gorm.DB {
	return Apply(FromContext(db.Statement.Context))(db)
}
