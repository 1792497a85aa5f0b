package fileparse

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX parses the first sheet of an XLSX workbook into header-keyed records
func ParseXLSX(data []byte) ([]map[string]string, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrMissingHeader
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrMissingHeader
	}

	headers := normalizeHeaders(rows[0])
	if len(headers) == 0 {
		return nil, ErrMissingHeader
	}

	var records []map[string]string
	for _, fields := range rows[1:] {
		if record, ok := buildRecord(headers, fields); ok {
			records = append(records, record)
		}
	}
	if len(records) == 0 {
		return nil, ErrNoDataRows
	}
	return records, nil
}
