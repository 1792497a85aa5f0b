package payment

import (
	"fmt"
	"regexp"
	"time"
)

// retrySuffix matches one or more trailing "-r<n>" retry markers
var retrySuffix = regexp.MustCompile(`(?i)(-r\d+)+$`)

// BaseTransactionID strips any retry suffix from id. It is idempotent.
func BaseTransactionID(id string) string {
	return retrySuffix.ReplaceAllString(id, "")
}

// AttemptTransactionID derives the identifier for the given retry count.
// AttemptTransactionID(base, 0) == base.
func AttemptTransactionID(base string, retryCount int) string {
	if retryCount <= 0 {
		return base
	}
	return fmt.Sprintf("%s-r%d", base, retryCount)
}

// VoidTransactionID derives a fresh transaction id for voiding original
func VoidTransactionID(original string, at time.Time) string {
	return fmt.Sprintf("%s-void-%d", original, at.UnixMilli())
}
