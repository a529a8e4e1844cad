// Package cache provides the storage backends behind the compiled index
// cache.
//
// Resolver processes keep a decoded copy of the namespace index in a cache
// so they can skip re-parsing the artifact. The index builder deletes that
// entry after every rebuild, which makes the cache safe to share between
// processes: a reader either sees the fresh table or misses and reads the
// new artifact from disk.
//
// # Backends
//
//   - FileCache: JSON entries below a directory (default for the CLI)
//   - RedisCache: shared across hosts and containers
//   - NullCache: caching disabled
//
// Keys are produced by TableKey and can be namespaced with NewScoped.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads with an optional expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. Delete of a missing key is not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
