package session

import (
	"context"
	"sync"
	"time"
)

type (
	// Entry is what a backend remembers about one session.
	Entry struct {
		PrincipalID string
		CreatedAt   time.Time
	}

	// Records is the storage contract behind a Keyed store.
	//
	// Get must return ErrNotFound when the id is unknown. Delete reports
	// whether something was removed; a missing id is not an error.
	Records interface {
		Put(ctx context.Context, id string, e Entry) error
		Get(ctx context.Context, id string) (Entry, error)
		Delete(ctx context.Context, id string) (bool, error)
	}

	memoryRecords struct {
		sync.RWMutex
		entries map[string]Entry
	}
)

// MemoryRecords keeps entries in a map guarded by a RWMutex. Its lifetime
// is the lifetime of the owner, nothing is shared at package level.
func MemoryRecords() Records {
	return &memoryRecords{
		entries: make(map[string]Entry),
	}
}

func (m *memoryRecords) Put(_ context.Context, id string, e Entry) error {
	m.Lock()
	m.entries[id] = e
	m.Unlock()
	return nil
}

func (m *memoryRecords) Get(_ context.Context, id string) (Entry, error) {
	m.RLock()
	e, ok := m.entries[id]
	m.RUnlock()
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (m *memoryRecords) Delete(_ context.Context, id string) (bool, error) {
	m.Lock()
	defer m.Unlock()
	if _, ok := m.entries[id]; !ok {
		return false, nil
	}
	delete(m.entries, id)
	return true, nil
}

// UnixNanos encodes t for storage, the zero time maps to 0.
func UnixNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

// FromUnixNanos is the inverse of UnixNanos.
func FromUnixNanos(n int64) time.Time {
	if n <= 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
