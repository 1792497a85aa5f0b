package models

import (
	"encoding/json"
	"fmt"

	"github.com/sddportal/backend/internal/domain/upload"
)

// UploadModel is the persistence model for the Upload aggregate. Records and
// rows are stored as parallel JSON arrays.
type UploadModel struct {
	OwnedAggregateModel
	FileName      string `gorm:"type:varchar(255);not null"`
	StorageKey    string `gorm:"type:varchar(512)"`
	RecordsJSON   string `gorm:"column:records;type:jsonb;not null"`
	RowsJSON      string `gorm:"column:rows;type:jsonb;not null"`
	ApprovedCount int    `gorm:"not null;default:0"`
	VoidedCount   int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (UploadModel) TableName() string {
	return "uploads"
}

// ToDomain converts the model to a domain Upload. Rows are normalized to the
// record count unless records were not selected.
func (m *UploadModel) ToDomain() (*upload.Upload, error) {
	u := &upload.Upload{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		FileName:           m.FileName,
		StorageKey:         m.StorageKey,
		ApprovedCount:      m.ApprovedCount,
		VoidedCount:        m.VoidedCount,
	}
	if m.RecordsJSON != "" {
		if err := json.Unmarshal([]byte(m.RecordsJSON), &u.Records); err != nil {
			return nil, fmt.Errorf("decode records of upload %s: %w", m.ID, err)
		}
	}
	if m.RowsJSON != "" {
		if err := json.Unmarshal([]byte(m.RowsJSON), &u.Rows); err != nil {
			return nil, fmt.Errorf("decode rows of upload %s: %w", m.ID, err)
		}
	}
	if m.RecordsJSON != "" {
		u.NormalizeRows()
	}
	return u, nil
}

// UploadModelFromDomain converts a domain Upload to its persistence model
func UploadModelFromDomain(u *upload.Upload) (*UploadModel, error) {
	m := &UploadModel{
		FileName:      u.FileName,
		StorageKey:    u.StorageKey,
		ApprovedCount: u.ApprovedCount,
		VoidedCount:   u.VoidedCount,
	}
	m.FromDomainOwnedAggregateRoot(u.OwnedAggregateRoot)

	records, err := json.Marshal(nonNilRecords(u.Records))
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	m.RecordsJSON = string(records)

	rows, err := EncodeRows(u.Rows)
	if err != nil {
		return nil, err
	}
	m.RowsJSON = rows
	return m, nil
}

// EncodeRows serializes the row array
func EncodeRows(rows []upload.Row) (string, error) {
	if rows == nil {
		rows = []upload.Row{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encode rows: %w", err)
	}
	return string(data), nil
}

func nonNilRecords(records []upload.Record) []upload.Record {
	if records == nil {
		return []upload.Record{}
	}
	return records
}
