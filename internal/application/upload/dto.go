package upload

import (
	"time"

	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/domain/upload"
)

// CreateUploadInput is the raw file handed over by the HTTP layer
type CreateUploadInput struct {
	FileName    string
	ContentType string
	Content     []byte
	AgencyID    *uuid.UUID
	AccountID   *uuid.UUID
}

// UploadSummary is an upload without its records, used in listings
type UploadSummary struct {
	ID            uuid.UUID                `json:"id"`
	FileName      string                   `json:"fileName"`
	AgencyID      *uuid.UUID               `json:"agencyId,omitempty"`
	AccountID     *uuid.UUID               `json:"accountId,omitempty"`
	RowCount      int                      `json:"rowCount"`
	ApprovedCount int                      `json:"approvedCount"`
	VoidedCount   int                      `json:"voidedCount"`
	StatusCounts  map[upload.RowStatus]int `json:"statusCounts"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
}

// UploadDetail is the full upload with records and row state
type UploadDetail struct {
	UploadSummary
	Records []upload.Record `json:"records"`
	Rows    []upload.Row    `json:"rows"`
}

// ToUploadSummary converts the aggregate into a listing entry
func ToUploadSummary(u *upload.Upload) UploadSummary {
	return UploadSummary{
		ID:            u.ID,
		FileName:      u.FileName,
		AgencyID:      u.AgencyID,
		AccountID:     u.AccountID,
		RowCount:      len(u.Rows),
		ApprovedCount: u.ApprovedCount,
		VoidedCount:   u.VoidedCount,
		StatusCounts:  u.StatusCounts(),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// ToUploadDetail converts the aggregate into the detail response
func ToUploadDetail(u *upload.Upload) *UploadDetail {
	return &UploadDetail{
		UploadSummary: ToUploadSummary(u),
		Records:       u.Records,
		Rows:          u.Rows,
	}
}
