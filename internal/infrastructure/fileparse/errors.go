package fileparse

import (
	"errors"
)

// Parse error codes
const (
	ErrCodeParseEmptyFile         = "ERR_PARSE_EMPTY_FILE"
	ErrCodeParseFileTooLarge      = "ERR_PARSE_FILE_TOO_LARGE"
	ErrCodeParseUnsupportedFormat = "ERR_PARSE_UNSUPPORTED_FORMAT"
	ErrCodeParseMissingHeader     = "ERR_PARSE_MISSING_HEADER"
	ErrCodeParseMalformedRow      = "ERR_PARSE_MALFORMED_ROW"
	ErrCodeParseNoDataRows        = "ERR_PARSE_NO_DATA_ROWS"
)

var (
	// ErrEmptyFile is returned when the uploaded file has no content
	ErrEmptyFile = errors.New("file is empty")

	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("file missing header row")

	// ErrNoDataRows is returned when the file has a header but no records
	ErrNoDataRows = errors.New("file contains no data rows")

	// ErrFileTooLarge is returned when the file exceeds the maximum size
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

	// ErrUnsupportedFormat is returned for extensions other than csv/txt/xlsx
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// ErrorCode returns the stable code of a parse error, or "" for unknown errors
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrEmptyFile):
		return ErrCodeParseEmptyFile
	case errors.Is(err, ErrFileTooLarge):
		return ErrCodeParseFileTooLarge
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrCodeParseUnsupportedFormat
	case errors.Is(err, ErrMissingHeader):
		return ErrCodeParseMissingHeader
	case errors.Is(err, ErrNoDataRows):
		return ErrCodeParseNoDataRows
	}
	return ""
}
