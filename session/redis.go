package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisPrefix = "turnstile:session:"

	fieldPrincipal = "principal_id"
	fieldCreatedAt = "created_at"
)

type (
	// RedisRecords stores each session as a hash under prefix+id.
	RedisRecords struct {
		client redis.UniversalClient
		prefix string
		ttl    time.Duration
	}
)

var (
	_ Records = (*RedisRecords)(nil)
)

// NewRedisRecords uses client for every call. When ttl is positive redis is
// asked to drop the key after ttl, which only reclaims memory: reads still
// go through the expiry check of the owning store.
func NewRedisRecords(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisRecords {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisRecords{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisRecords) key(id string) string {
	return r.prefix + id
}

func (r *RedisRecords) Put(ctx context.Context, id string, e Entry) error {
	key := r.key(id)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key,
			fieldPrincipal, e.PrincipalID,
			fieldCreatedAt, strconv.FormatInt(UnixNanos(e.CreatedAt), 10))
		if r.ttl > 0 {
			p.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("unable to store session in redis, cause %w", err)
	}
	return nil
}

func (r *RedisRecords) Get(ctx context.Context, id string) (Entry, error) {
	fields, err := r.client.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return Entry{}, fmt.Errorf("unable to read session from redis, cause %w", err)
	}
	principal, ok := fields[fieldPrincipal]
	if !ok {
		return Entry{}, ErrNotFound
	}
	e := Entry{PrincipalID: principal}
	if raw, ok := fields[fieldCreatedAt]; ok {
		nanos, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			e.CreatedAt = FromUnixNanos(nanos)
		}
	}
	return e, nil
}

func (r *RedisRecords) Delete(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("unable to delete session from redis, cause %w", err)
	}
	return n > 0, nil
}
