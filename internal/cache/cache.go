package cache

import (
	"context"
	"time"
)

// Cache is what the search and indexing services see of Redis. Get/Set/Del
// carry serialized search result pages keyed per keys.go; the set operations
// maintain the per-route key sets that upserts delete to invalidate those
// pages. Get reports a miss as (nil, false, nil), not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error

	// route key sets, see SearchKeysSetKey
	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error

	Close() error
}
