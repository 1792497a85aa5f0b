package fileparse

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize limits uploaded files to 10 MiB
const DefaultMaxFileSize = 10 << 20

// Parser turns uploaded files into raw records
type Parser struct {
	maxSize int64
}

// NewParser creates a parser; maxSize <= 0 uses DefaultMaxFileSize
func NewParser(maxSize int64) *Parser {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Parser{maxSize: maxSize}
}

// Parse dispatches on the file extension
func (p *Parser) Parse(fileName string, data []byte) ([]map[string]string, error) {
	if int64(len(data)) > p.maxSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, len(data), p.maxSize)
	}

	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".csv", ".txt":
		return ParseCSV(data)
	case ".xlsx":
		return ParseXLSX(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
