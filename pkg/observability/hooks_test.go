package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	i := NoopIndexHooks{}
	i.OnIndexWrite(ctx, "/srv/spoom/package.toml", 3, time.Millisecond, nil)
	i.OnIndexLoad(ctx, "/srv/spoom/package.toml", true)

	r := NoopResolveHooks{}
	r.OnResolve(`Acme\Shop\Cart`, true, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Index().(NoopIndexHooks); !ok {
		t.Error("Index() should return NoopIndexHooks by default")
	}
	if _, ok := Resolve().(NoopResolveHooks); !ok {
		t.Error("Resolve() should return NoopResolveHooks by default")
	}

	c := NewCounters()
	SetIndexHooks(c)
	SetResolveHooks(c)
	if Index() != IndexHooks(c) {
		t.Error("SetIndexHooks should set custom hooks")
	}
	if Resolve() != ResolveHooks(c) {
		t.Error("SetResolveHooks should set custom hooks")
	}

	SetIndexHooks(nil)
	if Index() != IndexHooks(c) {
		t.Error("SetIndexHooks(nil) should be ignored")
	}

	Reset()
	if _, ok := Index().(NoopIndexHooks); !ok {
		t.Error("Reset() should restore NoopIndexHooks")
	}
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	c := NewCounters()

	c.OnIndexWrite(ctx, "a", 2, time.Millisecond, nil)
	c.OnIndexWrite(ctx, "a", 0, time.Millisecond, errors.New("disk full"))
	c.OnIndexLoad(ctx, "a", false)
	c.OnIndexLoad(ctx, "a", true)
	c.OnIndexLoad(ctx, "a", true)
	c.OnResolve("A", true, 2*time.Millisecond)
	c.OnResolve("B", false, time.Millisecond)

	want := Snapshot{
		IndexWrites:      2,
		IndexWriteErrors: 1,
		IndexLoads:       3,
		IndexCachedLoads: 2,
		Resolved:         1,
		Missed:           1,
		ResolveTime:      3 * time.Millisecond,
	}
	if got := c.Snapshot(); got != want {
		t.Errorf("Snapshot() = %+v, want %+v", got, want)
	}
}
