// internal/store/memory.go
//
// Key-value persistence for sessions, leaderboards and achievement records.
//
// The game core never talks to a database directly: it reads a record, applies one
// operation and writes the record back through the KV interface. Three backends are
// provided:
//   - memory (this file): map + RWMutex with lazy TTL expiry. State is lost on restart.
//   - sqlite (sqlite.go): the kv table created by assets/sql migrations.
//   - postgres (gorm.go): a kv_entries table managed by gorm AutoMigrate.
//
// Every backend reports a missing or expired key as ErrNotFound, and wraps
// infrastructure failures in ErrUnavailable so callers can surface them as retryable.

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned by Get when a key is absent or expired.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable marks storage failures the caller may retry.
	ErrUnavailable = errors.New("storage unavailable")
)

// KV is the storage contract required by the game core.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key. ttl <= 0 means the value never expires.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// unavailable wraps a backend error as retryable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

type memEntry struct {
	value   []byte
	expires time.Time // zero = never
}

// memory is an in-memory map-based KV implementation.
type memory struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	now     func() time.Time
}

// NewMemoryStore constructs a new in-memory KV.
func NewMemoryStore() KV {
	return &memory{entries: make(map[string]memEntry), now: time.Now}
}

// Get looks up a key, treating expired entries as missing.
func (m *memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("memory get", err)
	}
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && cur.expires.Equal(e.expires) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// Put adds or replaces the value under key.
func (m *memory) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return unavailable("memory put", err)
	}
	e := memEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}
