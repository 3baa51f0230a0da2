package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingRecords struct {
	Records
	gets int
}

func (c *countingRecords) Get(ctx context.Context, id string) (Entry, error) {
	c.gets++
	return c.Records.Get(ctx, id)
}

func TestCachedRecords(t *testing.T) {
	ctx := context.Background()
	backing := &countingRecords{Records: MemoryRecords()}
	cached, err := NewCachedRecords(backing, time.Minute)
	require.NoError(t, err)
	defer cached.Close()

	created := time.Unix(1700000000, 42)
	require.NoError(t, cached.Put(ctx, "abc", Entry{PrincipalID: "user-1", CreatedAt: created}))

	for i := 0; i < 3; i++ {
		e, err := cached.Get(ctx, "abc")
		require.NoError(t, err)
		require.Equal(t, "user-1", e.PrincipalID)
		require.True(t, created.Equal(e.CreatedAt))
	}
	require.Equal(t, 0, backing.gets, "reads should be served by the cache")

	ok, err := cached.Delete(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = cached.Get(ctx, "abc")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, 1, backing.gets)
}

func TestCachedRecordsFillOnMiss(t *testing.T) {
	ctx := context.Background()
	backing := &countingRecords{Records: MemoryRecords()}
	require.NoError(t, backing.Put(ctx, "abc", Entry{PrincipalID: "user-1", CreatedAt: time.Now()}))

	cached, err := NewCachedRecords(backing, time.Minute)
	require.NoError(t, err)
	defer cached.Close()

	_, err = cached.Get(ctx, "abc")
	require.NoError(t, err)
	_, err = cached.Get(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, 1, backing.gets)
}

func TestPersistentOverCache(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	cached, err := NewCachedRecords(MemoryRecords(), time.Minute)
	require.NoError(t, err)
	defer cached.Close()

	s := NewPersistent(cached, time.Second, WithClock(clock.Now))
	id, err := s.Create(ctx, "user-1")
	require.NoError(t, err)
	_, err = s.Lookup(ctx, id)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	_, err = s.Lookup(ctx, id)
	require.ErrorIs(t, err, ErrExpired)
}

// stallingRecords holds the first Get after it has read the backing
// records, until release is closed.
type stallingRecords struct {
	Records
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (s *stallingRecords) Get(ctx context.Context, id string) (Entry, error) {
	e, err := s.Records.Get(ctx, id)
	s.once.Do(func() {
		close(s.read)
		<-s.release
	})
	return e, err
}

func TestCachedRecordsDeleteDuringFill(t *testing.T) {
	ctx := context.Background()
	backing := &stallingRecords{
		Records: MemoryRecords(),
		read:    make(chan struct{}),
		release: make(chan struct{}),
	}
	require.NoError(t, backing.Put(ctx, "abc", Entry{PrincipalID: "user-1", CreatedAt: time.Now()}))
	cached, err := NewCachedRecords(backing, time.Minute)
	require.NoError(t, err)
	defer cached.Close()

	done := make(chan error, 1)
	go func() {
		_, err := cached.Get(ctx, "abc")
		done <- err
	}()

	<-backing.read
	ok, err := cached.Delete(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	close(backing.release)
	require.NoError(t, <-done, "the stalled read saw the entry before it was deleted")

	_, err = cached.Get(ctx, "abc")
	require.ErrorIs(t, err, ErrNotFound, "a destroyed session must not come back from the cache")
}
