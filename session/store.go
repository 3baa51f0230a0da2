package session

import (
	"context"
	"time"
)

type (
	// Store is the session registry used by the authentication strategies.
	Store interface {
		// Create registers a new session owned by principalID and returns its id.
		Create(ctx context.Context, principalID string) (string, error)
		// Lookup returns the owner of the session, ErrNotFound or ErrExpired.
		Lookup(ctx context.Context, id string) (string, error)
		// Destroy removes the session, returning false if it did not exist.
		Destroy(ctx context.Context, id string) (bool, error)
	}

	// EntryStore exposes the full entry so wrappers can reason about age.
	EntryStore interface {
		Store
		Entry(ctx context.Context, id string) (Entry, error)
	}

	// Keyed is the base store: fresh random ids mapped to entries kept in
	// a Records backend. It never expires anything.
	Keyed struct {
		records Records
		newID   IDSource
		now     func() time.Time
	}

	// Option customizes a Keyed store.
	Option func(*Keyed)
)

var (
	_ EntryStore = (*Keyed)(nil)
)

// WithIDSource replaces crypto/rand ids, tests only.
func WithIDSource(src IDSource) Option {
	return func(k *Keyed) { k.newID = src }
}

// WithClock sets the function used to stamp CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(k *Keyed) { k.now = now }
}

// NewKeyed returns a base store writing to records.
func NewKeyed(records Records, opts ...Option) *Keyed {
	k := &Keyed{
		records: records,
		newID:   RandomID,
		now:     time.Now,
	}
	for _, o := range opts {
		o(k)
	}
	return k
}

// NewMemory is the in-memory base store.
func NewMemory(opts ...Option) *Keyed {
	return NewKeyed(MemoryRecords(), opts...)
}

func (k *Keyed) Create(ctx context.Context, principalID string) (string, error) {
	if principalID == "" {
		return "", ErrEmptyPrincipal
	}
	id, err := k.newID()
	if err != nil {
		return "", err
	}
	err = k.records.Put(ctx, id, Entry{PrincipalID: principalID, CreatedAt: k.now()})
	if err != nil {
		return "", unavailable("create", err)
	}
	return id, nil
}

func (k *Keyed) Entry(ctx context.Context, id string) (Entry, error) {
	if id == "" {
		return Entry{}, ErrNotFound
	}
	e, err := k.records.Get(ctx, id)
	if err != nil {
		return Entry{}, unavailable("lookup", err)
	}
	return e, nil
}

func (k *Keyed) Lookup(ctx context.Context, id string) (string, error) {
	e, err := k.Entry(ctx, id)
	if err != nil {
		return "", err
	}
	return e.PrincipalID, nil
}

func (k *Keyed) Destroy(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	ok, err := k.records.Delete(ctx, id)
	if err != nil {
		return false, unavailable("destroy", err)
	}
	return ok, nil
}
