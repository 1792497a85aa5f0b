package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC (default)
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// UploadSortFields contains allowed sort fields for uploads
var UploadSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"file_name":      true,
	"approved_count": true,
	"voided_count":   true,
}
