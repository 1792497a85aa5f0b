package cache

import (
	"context"
	"sync"
	"time"
)

type lockEntry struct {
	token     string
	expiresAt time.Time
}

// InMemoryRowLock implements RowLock for single-instance deployments
type InMemoryRowLock struct {
	mu      sync.Mutex
	entries map[string]lockEntry
	now     func() time.Time
}

var _ RowLock = (*InMemoryRowLock)(nil)

// NewInMemoryRowLock creates an in-process row lock. Expired entries are
// replaced lazily on the next acquisition of the same key.
func NewInMemoryRowLock() *InMemoryRowLock {
	return &InMemoryRowLock{
		entries: make(map[string]lockEntry),
		now:     time.Now,
	}
}

// TryAcquire implements RowLock
func (l *InMemoryRowLock) TryAcquire(_ context.Context, key string, ttl time.Duration) (*Lease, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, held := l.entries[key]; held && now.Before(e.expiresAt) {
		return nil, false, nil
	}
	lease := &Lease{Key: key, Token: newToken()}
	l.entries[key] = lockEntry{token: lease.Token, expiresAt: now.Add(ttl)}
	l.sweep(now)
	return lease, true, nil
}

// Release implements RowLock
func (l *InMemoryRowLock) Release(_ context.Context, lease *Lease) error {
	if lease == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, held := l.entries[lease.Key]; held && e.token == lease.Token {
		delete(l.entries, lease.Key)
	}
	return nil
}

// Size returns the number of tracked keys
func (l *InMemoryRowLock) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// sweep drops expired entries once the map grows; caller holds mu
func (l *InMemoryRowLock) sweep(now time.Time) {
	if len(l.entries) < 1024 {
		return
	}
	for k, e := range l.entries {
		if !now.Before(e.expiresAt) {
			delete(l.entries, k)
		}
	}
}
