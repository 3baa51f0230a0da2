package session

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
)

type (
	// CachedRecords keeps recently used entries in a bigcache in front of a
	// slower backend. Writes and deletes go to both.
	//
	// The cache is per process: a session destroyed by another process may
	// still be served from here until the entry leaves the cache, so keep
	// the window short when running more than one replica.
	CachedRecords struct {
		cache   *bigcache.BigCache
		backing Records

		// deletes is bumped under fillLock after every backing delete. A
		// read only fills the cache when no delete finished while it was
		// talking to the backing store.
		fillLock sync.Mutex
		deletes  uint64
	}
)

var (
	_ Records = (*CachedRecords)(nil)

	errCorruptEntry = errors.New("corrupt cached session entry")
)

// NewCachedRecords builds the cache with entries living at most window.
func NewCachedRecords(backing Records, window time.Duration) (*CachedRecords, error) {
	cfg := bigcache.DefaultConfig(window)
	cfg.CleanWindow = window
	cache, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to allocate session cache, cause %w", err)
	}
	return &CachedRecords{
		cache:   cache,
		backing: backing,
	}, nil
}

func (c *CachedRecords) Put(ctx context.Context, id string, e Entry) error {
	if err := c.backing.Put(ctx, id, e); err != nil {
		return err
	}
	c.cache.Set(id, encodeEntry(e))
	return nil
}

func (c *CachedRecords) Get(ctx context.Context, id string) (Entry, error) {
	buf, err := c.cache.Get(id)
	if err == nil {
		e, err := decodeEntry(buf)
		if err == nil {
			return e, nil
		}
		c.cache.Delete(id)
	}
	c.fillLock.Lock()
	seen := c.deletes
	c.fillLock.Unlock()

	e, err := c.backing.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}

	c.fillLock.Lock()
	if c.deletes == seen {
		c.cache.Set(id, encodeEntry(e))
	}
	c.fillLock.Unlock()
	return e, nil
}

func (c *CachedRecords) Delete(ctx context.Context, id string) (bool, error) {
	// ErrEntryNotFound is fine, the backing store decides the answer
	c.cache.Delete(id)
	ok, err := c.backing.Delete(ctx, id)

	c.fillLock.Lock()
	c.deletes++
	c.cache.Delete(id)
	c.fillLock.Unlock()
	return ok, err
}

// Close releases the cache, the backing records are left alone.
func (c *CachedRecords) Close() error {
	return c.cache.Close()
}

func encodeEntry(e Entry) []byte {
	buf := make([]byte, 8+len(e.PrincipalID))
	binary.BigEndian.PutUint64(buf, uint64(UnixNanos(e.CreatedAt)))
	copy(buf[8:], e.PrincipalID)
	return buf
}

func decodeEntry(buf []byte) (Entry, error) {
	if len(buf) <= 8 {
		return Entry{}, errCorruptEntry
	}
	return Entry{
		CreatedAt:   FromUnixNanos(int64(binary.BigEndian.Uint64(buf))),
		PrincipalID: string(buf[8:]),
	}, nil
}
