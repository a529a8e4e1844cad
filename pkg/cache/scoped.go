package cache

import (
	"context"
	"time"
)

// Scoped prefixes every key of an inner cache. It isolates projects that
// share one Redis instance.
//
// Example usage:
//
//	shared, _ := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: "localhost:6379"})
//	project := cache.NewScoped(shared, "spoom:acme/shop:")
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped wraps inner with a key prefix. A nil inner cache becomes a
// NullCache.
func NewScoped(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &Scoped{inner: inner, prefix: prefix}
}

// Get retrieves a value using the prefixed key.
func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Set stores a value using the prefixed key.
func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

// Delete removes a value using the prefixed key.
func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close closes the inner cache.
func (s *Scoped) Close() error {
	return s.inner.Close()
}

var _ Cache = (*Scoped)(nil)
