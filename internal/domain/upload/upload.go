package upload

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/domain/shared"
)

// Upload errors
var (
	ErrUploadNotFound     = shared.NewDomainError("UPLOAD_NOT_FOUND", "Upload not found")
	ErrRowIndexOutOfRange = shared.NewDomainError("ROW_INDEX_OUT_OF_RANGE", "Row index out of range")
	ErrEmptyUpload        = shared.NewDomainError("EMPTY_UPLOAD", "Upload contains no records")
)

// Record is one raw uploaded record keyed by column header
type Record map[string]string

// Upload is a batch of raw records with parallel row state.
// len(Rows) == len(Records) at all times.
type Upload struct {
	shared.OwnedAggregateRoot
	FileName      string   `json:"fileName"`
	StorageKey    string   `json:"storageKey,omitempty"`
	Records       []Record `json:"records"`
	Rows          []Row    `json:"rows"`
	ApprovedCount int      `json:"approvedCount"`
	VoidedCount   int      `json:"voidedCount"`
}

// NewUpload creates an upload with one pending row per record
func NewUpload(fileName string, agencyID, accountID, createdBy *uuid.UUID, records []Record) (*Upload, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if len(records) == 0 {
		return nil, ErrEmptyUpload
	}
	rows := make([]Row, len(records))
	for i := range rows {
		rows[i] = NewRow()
		rows[i].Ordinal = i + 1
	}
	return &Upload{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(agencyID, accountID, createdBy),
		FileName:           fileName,
		Records:            records,
		Rows:               rows,
	}, nil
}

// StorageKeyFor returns the object storage key of the archived source file
func StorageKeyFor(id uuid.UUID, fileName string) string {
	return fmt.Sprintf("uploads/%s/%s", id, fileName)
}

// NormalizeRows pads or trims Rows so that it matches Records
func (u *Upload) NormalizeRows() {
	switch {
	case len(u.Rows) < len(u.Records):
		for len(u.Rows) < len(u.Records) {
			u.Rows = append(u.Rows, NewRow())
		}
	case len(u.Rows) > len(u.Records):
		u.Rows = u.Rows[:len(u.Records)]
	}
	u.EnsureOrdinals()
}

// EnsureOrdinals assigns an ordinal to rows stored without one. A row gets its
// current position when that ordinal is still free, otherwise the next unused one.
func (u *Upload) EnsureOrdinals() {
	used := make(map[int]bool, len(u.Rows))
	highest := 0
	for i := range u.Rows {
		if o := u.Rows[i].Ordinal; o > 0 {
			used[o] = true
			highest = max(highest, o)
		}
	}
	for i := range u.Rows {
		if u.Rows[i].Ordinal > 0 {
			continue
		}
		o := i + 1
		if used[o] {
			highest++
			o = highest
		}
		u.Rows[i].Ordinal = o
		used[o] = true
		highest = max(highest, o)
	}
}

func (u *Upload) checkIndex(index int) error {
	if index < 0 || index >= len(u.Records) || index >= len(u.Rows) {
		return shared.NewDomainError(ErrRowIndexOutOfRange.Code,
			fmt.Sprintf("Row index %d out of range (upload has %d records)", index, len(u.Records)))
	}
	return nil
}

// RowAt returns a pointer to the row at index
func (u *Upload) RowAt(index int) (*Row, error) {
	if err := u.checkIndex(index); err != nil {
		return nil, err
	}
	return &u.Rows[index], nil
}

// RecordAt returns the record at index
func (u *Upload) RecordAt(index int) (Record, error) {
	if err := u.checkIndex(index); err != nil {
		return nil, err
	}
	return u.Records[index], nil
}

// DeleteRecord removes the record and its row; later indices shift down by one
func (u *Upload) DeleteRecord(index int) error {
	if err := u.checkIndex(index); err != nil {
		return err
	}
	u.EnsureOrdinals()
	u.Records = append(u.Records[:index:index], u.Records[index+1:]...)
	u.Rows = append(u.Rows[:index:index], u.Rows[index+1:]...)
	u.RecomputeCounts()
	u.touch()
	return nil
}

// ApprovedRowIndexes returns the indexes of approved rows in order
func (u *Upload) ApprovedRowIndexes() []int {
	indexes := make([]int, 0)
	for i := range u.Rows {
		if u.Rows[i].Status == RowStatusApproved {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

// RecomputeCounts refreshes ApprovedCount and VoidedCount from the rows
func (u *Upload) RecomputeCounts() {
	approved, voided := 0, 0
	for i := range u.Rows {
		switch u.Rows[i].Status {
		case RowStatusApproved:
			approved++
		case RowStatusVoided:
			voided++
		}
	}
	u.ApprovedCount = approved
	u.VoidedCount = voided
}

// RowsChanged must be called after mutating rows and before persisting them
func (u *Upload) RowsChanged() {
	u.RecomputeCounts()
	u.touch()
}

// StatusCounts returns the number of rows per status
func (u *Upload) StatusCounts() map[RowStatus]int {
	counts := make(map[RowStatus]int)
	for i := range u.Rows {
		counts[u.Rows[i].Status]++
	}
	return counts
}

func (u *Upload) touch() {
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}
