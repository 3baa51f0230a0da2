package session

import (
	"context"
	"time"
)

type (
	// Expiring applies a maximum age to the entries of another store.
	// A duration <= 0 disables expiry.
	Expiring struct {
		base     EntryStore
		duration time.Duration
		now      func() time.Time
	}
)

var (
	_ EntryStore = (*Expiring)(nil)
)

// NewExpiring wraps base. now may be nil, in which case time.Now is used.
func NewExpiring(base EntryStore, duration time.Duration, now func() time.Time) *Expiring {
	if now == nil {
		now = time.Now
	}
	return &Expiring{
		base:     base,
		duration: duration,
		now:      now,
	}
}

// NewPersistent is an expiring store whose entries live in durable records.
func NewPersistent(records Records, duration time.Duration, opts ...Option) *Expiring {
	k := NewKeyed(records, opts...)
	return NewExpiring(k, duration, k.now)
}

// Duration returns the configured maximum age.
func (e *Expiring) Duration() time.Duration {
	return e.duration
}

func (e *Expiring) Create(ctx context.Context, principalID string) (string, error) {
	return e.base.Create(ctx, principalID)
}

func (e *Expiring) Entry(ctx context.Context, id string) (Entry, error) {
	entry, err := e.base.Entry(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if e.duration <= 0 {
		return entry, nil
	}
	if entry.CreatedAt.IsZero() {
		return Entry{}, ErrExpired
	}
	if e.now().After(entry.CreatedAt.Add(e.duration)) {
		return Entry{}, ErrExpired
	}
	return entry, nil
}

func (e *Expiring) Lookup(ctx context.Context, id string) (string, error) {
	entry, err := e.Entry(ctx, id)
	if err != nil {
		return "", err
	}
	return entry.PrincipalID, nil
}

func (e *Expiring) Destroy(ctx context.Context, id string) (bool, error) {
	return e.base.Destroy(ctx, id)
}
