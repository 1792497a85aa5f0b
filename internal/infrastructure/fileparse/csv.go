package fileparse

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOption is a functional option for ParseCSV
type CSVOption func(*csvConfig)

type csvConfig struct {
	delimiter rune
}

// WithDelimiter forces the field delimiter instead of sniffing it from the header
func WithDelimiter(d rune) CSVOption {
	return func(c *csvConfig) {
		c.delimiter = d
	}
}

// ParseCSV parses CSV content into header-keyed records.
// A UTF-8 BOM is stripped; content that is not valid UTF-8 is decoded as Windows-1252.
// Completely empty lines are skipped.
func ParseCSV(data []byte, opts ...CSVOption) ([]map[string]string, error) {
	cfg := &csvConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode file: %w", err)
		}
		data = decoded
	}

	if cfg.delimiter == 0 {
		cfg.delimiter = sniffDelimiter(data)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = cfg.delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	headers := normalizeHeaders(header)
	if len(headers) == 0 {
		return nil, ErrMissingHeader
	}

	var records []map[string]string
	line := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", line, err)
		}
		if record, ok := buildRecord(headers, fields); ok {
			records = append(records, record)
		}
	}

	if len(records) == 0 {
		return nil, ErrNoDataRows
	}
	return records, nil
}

// sniffDelimiter picks the most frequent candidate delimiter in the first line
func sniffDelimiter(data []byte) rune {
	first := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		first = data[:idx]
	}
	best, bestCount := ',', 0
	for _, candidate := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(first, []byte(string(candidate))); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

// normalizeHeaders trims headers and drops trailing empty columns
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		headers[i] = strings.TrimSpace(h)
	}
	for len(headers) > 0 && headers[len(headers)-1] == "" {
		headers = headers[:len(headers)-1]
	}
	return headers
}

// buildRecord maps fields onto headers. It returns false for rows without any value.
func buildRecord(headers, fields []string) (map[string]string, bool) {
	record := make(map[string]string, len(headers))
	empty := true
	for i, h := range headers {
		if h == "" {
			continue
		}
		value := ""
		if i < len(fields) {
			value = strings.TrimSpace(fields[i])
		}
		if value != "" {
			empty = false
		}
		record[h] = value
	}
	return record, !empty
}
