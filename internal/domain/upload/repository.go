package upload

import (
	"context"

	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/domain/shared"
)

// Repository persists uploads and their row state.
// Writes are last-write-wins; there is no optimistic concurrency check.
type Repository interface {
	// FindByID returns ErrUploadNotFound when the upload does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Upload, error)
	// List returns uploads visible within scope, newest first
	List(ctx context.Context, scope Scope, filter shared.Filter) ([]Upload, int64, error)
	// Save creates or fully replaces the upload including records and rows
	Save(ctx context.Context, u *Upload) error
	// SaveRows persists the row array and derived counts in a single write
	SaveRows(ctx context.Context, u *Upload) error
	// Delete removes the upload
	Delete(ctx context.Context, id uuid.UUID) error
}
