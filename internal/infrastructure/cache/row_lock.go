package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RowLock serializes submissions of the same upload row across requests.
// A lease is held until released or until its TTL expires.
type RowLock interface {
	// TryAcquire returns ok=false without error when the key is already held
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (lease *Lease, ok bool, err error)
	// Release frees the lease; releasing an expired or stolen lease is a no-op
	Release(ctx context.Context, lease *Lease) error
}

// Lease identifies one acquisition of a key
type Lease struct {
	Key   string
	Token string
}

// RowKey returns the lock key of one upload row
func RowKey(uploadID uuid.UUID, rowIndex int) string {
	return fmt.Sprintf("sdd:rowlock:%s:%d", uploadID, rowIndex)
}

func newToken() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(b[:])
}
