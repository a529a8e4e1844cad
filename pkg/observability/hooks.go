// Package observability provides hooks for instrumenting index and
// resolver activity.
//
// Libraries emit events through the registered hooks; by default every
// hook is a no-op. The CLI registers [Counters] for spoom serve so the
// counts can be queried at /stats.
//
// # Usage
//
// Register hooks at application startup:
//
//	counters := observability.NewCounters()
//	observability.SetIndexHooks(counters)
//	observability.SetResolveHooks(counters)
//
// Libraries call hooks to emit events:
//
//	observability.Index().OnIndexLoad(ctx, path, cached)
//	observability.Resolve().OnResolve(symbol, resolved, duration)
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// Hook Interfaces
// =============================================================================

// IndexHooks receives events about the persisted index.
type IndexHooks interface {
	// OnIndexWrite records an index rebuild.
	OnIndexWrite(ctx context.Context, path string, namespaces int, duration time.Duration, err error)

	// OnIndexLoad records an index read; cached is set when the decoded
	// table came from the table cache.
	OnIndexLoad(ctx context.Context, path string, cached bool)
}

// ResolveHooks receives events from symbol resolution.
type ResolveHooks interface {
	OnResolve(symbol string, resolved bool, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopIndexHooks is a no-op implementation of IndexHooks.
type NoopIndexHooks struct{}

func (NoopIndexHooks) OnIndexWrite(context.Context, string, int, time.Duration, error) {}
func (NoopIndexHooks) OnIndexLoad(context.Context, string, bool)                       {}

// NoopResolveHooks is a no-op implementation of ResolveHooks.
type NoopResolveHooks struct{}

func (NoopResolveHooks) OnResolve(string, bool, time.Duration) {}

// =============================================================================
// Counters
// =============================================================================

// Counters implements every hook interface with atomic counters.
type Counters struct {
	writes       atomic.Int64
	writeErrors  atomic.Int64
	loads        atomic.Int64
	cachedLoads  atomic.Int64
	resolved     atomic.Int64
	missed       atomic.Int64
	resolveNanos atomic.Int64
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters { return &Counters{} }

func (c *Counters) OnIndexWrite(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	c.writes.Add(1)
	if err != nil {
		c.writeErrors.Add(1)
	}
}

func (c *Counters) OnIndexLoad(_ context.Context, _ string, cached bool) {
	c.loads.Add(1)
	if cached {
		c.cachedLoads.Add(1)
	}
}

func (c *Counters) OnResolve(_ string, resolved bool, d time.Duration) {
	if resolved {
		c.resolved.Add(1)
	} else {
		c.missed.Add(1)
	}
	c.resolveNanos.Add(int64(d))
}

// Snapshot is a point-in-time copy of Counters.
type Snapshot struct {
	IndexWrites      int64         `json:"index_writes"`
	IndexWriteErrors int64         `json:"index_write_errors"`
	IndexLoads       int64         `json:"index_loads"`
	IndexCachedLoads int64         `json:"index_cached_loads"`
	Resolved         int64         `json:"resolved"`
	Missed           int64         `json:"missed"`
	ResolveTime      time.Duration `json:"resolve_time_ns"`
}

// Snapshot returns the current counts.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		IndexWrites:      c.writes.Load(),
		IndexWriteErrors: c.writeErrors.Load(),
		IndexLoads:       c.loads.Load(),
		IndexCachedLoads: c.cachedLoads.Load(),
		Resolved:         c.resolved.Load(),
		Missed:           c.missed.Load(),
		ResolveTime:      time.Duration(c.resolveNanos.Load()),
	}
}

var (
	_ IndexHooks   = (*Counters)(nil)
	_ ResolveHooks = (*Counters)(nil)
)

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	indexHooks   IndexHooks   = NoopIndexHooks{}
	resolveHooks ResolveHooks = NoopResolveHooks{}
	hooksMu      sync.RWMutex
)

// SetIndexHooks registers custom index hooks. A nil value is ignored.
func SetIndexHooks(h IndexHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		indexHooks = h
	}
}

// SetResolveHooks registers custom resolve hooks. A nil value is ignored.
func SetResolveHooks(h ResolveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		resolveHooks = h
	}
}

// Index returns the registered index hooks.
func Index() IndexHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return indexHooks
}

// Resolve returns the registered resolve hooks.
func Resolve() ResolveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return resolveHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	indexHooks = NoopIndexHooks{}
	resolveHooks = NoopResolveHooks{}
}
