package autoload

import (
	"slices"
	"sync"
)

// ResolveFunc is a callback in a Chain. It reports whether symbol is defined
// once it returns.
type ResolveFunc func(symbol string) (bool, error)

// Chain is an ordered list of resolve callbacks, consulted when a symbol is
// referenced but not yet defined. Each callback is registered under an id;
// registering an id again moves it instead of adding a second copy.
type Chain struct {
	mu    sync.Mutex
	hooks []hook
}

type hook struct {
	id any
	fn ResolveFunc
}

var defaultChain = NewChain()

// DefaultChain returns the process-wide chain.
func DefaultChain() *Chain { return defaultChain }

// NewChain returns an empty chain.
func NewChain() *Chain { return &Chain{} }

// Register adds fn under id at the front (prepend) or back of the chain.
// id must be comparable.
func (c *Chain) Register(id any, fn ResolveFunc, prepend bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.remove(id)
	h := hook{id: id, fn: fn}
	if prepend {
		c.hooks = slices.Insert(c.hooks, 0, h)
	} else {
		c.hooks = append(c.hooks, h)
	}
}

// Unregister removes the callback registered under id and reports whether
// it was present.
func (c *Chain) Unregister(id any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remove(id)
}

func (c *Chain) remove(id any) bool {
	n := len(c.hooks)
	c.hooks = slices.DeleteFunc(c.hooks, func(h hook) bool { return h.id == id })
	return len(c.hooks) != n
}

// Registered reports whether id is in the chain.
func (c *Chain) Registered(id any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.IndexFunc(c.hooks, func(h hook) bool { return h.id == id }) >= 0
}

// Len returns the number of registered callbacks.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.hooks)
}

// Resolve calls each callback in order until one reports success. An error
// stops the walk.
func (c *Chain) Resolve(symbol string) (bool, error) {
	c.mu.Lock()
	hooks := slices.Clone(c.hooks)
	c.mu.Unlock()

	for _, h := range hooks {
		ok, err := h.fn(symbol)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
