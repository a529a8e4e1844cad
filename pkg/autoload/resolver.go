package autoload

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spoom/pkg/cache"
	"github.com/matzehuels/spoom/pkg/errors"
	"github.com/matzehuels/spoom/pkg/observability"
)

// SymbolRegistry reports whether a fully qualified symbol is already
// defined.
type SymbolRegistry interface {
	IsDefined(symbol string) bool
}

// Loader brings the definitions of a source file into scope.
//
// TryLoad reports whether the file was read. A missing file is (false, nil);
// any other failure is returned as an error. Whether the wanted symbol was
// actually defined is checked separately through the SymbolRegistry.
type Loader interface {
	TryLoad(path string) (bool, error)
}

// DefaultExtensions are the source file extensions tried for each name.
var DefaultExtensions = []string{".php"}

// Resolver locates and loads the source file of a symbol using a Table.
//
// A Resolver is either detached or attached to a Chain. It never changes
// its table; a rebuilt index is only seen by a new Resolver.
type Resolver struct {
	table      *Table
	registry   SymbolRegistry
	loader     Loader
	chain      *Chain
	extensions []string
	cache      cache.Cache
	ttl        time.Duration
	logger     *log.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithChain sets the chain used by Attach and Detach. Defaults to
// DefaultChain.
func WithChain(c *Chain) Option {
	return func(r *Resolver) { r.chain = c }
}

// WithExtensions sets the file extensions tried, in order, for each name.
func WithExtensions(exts ...string) Option {
	return func(r *Resolver) { r.extensions = exts }
}

// WithCache sets the compiled table cache consulted by Open.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = c
		r.ttl = ttl
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New returns a detached Resolver over t.
func New(t *Table, registry SymbolRegistry, loader Loader, opts ...Option) *Resolver {
	r := &Resolver{
		table:      t,
		registry:   registry,
		loader:     loader,
		chain:      DefaultChain(),
		extensions: DefaultExtensions,
		cache:      cache.NewNullCache(),
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.table == nil {
		r.table = &Table{}
	}
	return r
}

// Open reads the artifact at path and returns a detached Resolver over it.
// A missing, unreadable or malformed artifact is an error: a resolver
// without an index cannot do anything useful.
func Open(ctx context.Context, path string, registry SymbolRegistry, loader Loader, opts ...Option) (*Resolver, error) {
	r := New(nil, registry, loader, opts...)
	t, err := ReadTable(ctx, path, r.cache, r.ttl, r.logger)
	if err != nil {
		return nil, err
	}
	r.table = t
	return r, nil
}

// ReadTable loads the table at path. The artifact is always read from
// disk; c only saves decoding it again, keyed by the artifact content.
// Relative directories are resolved against the artifact directory.
func ReadTable(ctx context.Context, path string, c cache.Cache, ttl time.Duration, logger *log.Logger) (*Table, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if c == nil {
		c = cache.NewNullCache()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeIndexNotFound, err, "missing index file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIndexNotFound, err, "unreadable index file %s", path)
	}
	key := cache.TableKey(path, data)

	if cached, hit, err := c.Get(ctx, key); err != nil {
		logger.Warn("index cache read failed", "path", path, "err", err)
	} else if hit {
		var t Table
		if err := json.Unmarshal(cached, &t); err == nil {
			logger.Debug("index loaded from cache", "path", path, "namespaces", t.Len())
			observability.Index().OnIndexLoad(ctx, path, true)
			return &t, nil
		}
		logger.Warn("discarding corrupt cached index", "path", path)
	}

	stored, err := DecodeTOML(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	t := stored.Absolute(filepath.Dir(path))

	if encoded, err := json.Marshal(t); err == nil {
		if err := c.Set(ctx, key, encoded, ttl); err != nil {
			logger.Warn("index cache write failed", "path", path, "err", err)
		}
	}
	observability.Index().OnIndexLoad(ctx, path, false)
	return t, nil
}

// Table returns the index the resolver consults.
func (r *Resolver) Table() *Table { return r.table }

// Attach installs the resolver into its chain, at the front when prepend is
// set. Attaching twice leaves a single registration.
func (r *Resolver) Attach(prepend bool) {
	r.Detach()
	r.chain.Register(r, r.Resolve, prepend)
}

// Detach removes the resolver from its chain.
func (r *Resolver) Detach() {
	r.chain.Unregister(r)
}

// Attached reports whether the resolver is registered in its chain.
func (r *Resolver) Attached() bool {
	return r.chain.Registered(r)
}

// Resolve loads the file defining symbol and reports whether the symbol is
// defined afterwards. Symbols that are already defined are reported without
// loading anything.
//
// Entries are tried in table order. A matching entry whose file loads but
// does not define the symbol does not end the scan. A loader error other
// than a missing file ends the call with an IO_ERROR.
func (r *Resolver) Resolve(symbol string) (bool, error) {
	start := time.Now()
	ok, err := r.resolve(symbol)
	observability.Resolve().OnResolve(symbol, ok, time.Since(start))
	return ok, err
}

func (r *Resolver) resolve(symbol string) (bool, error) {
	if r.registry.IsDefined(symbol) {
		return true, nil
	}

	symbol = strings.TrimLeft(symbol, Separator)
	name, path := splitSymbol(symbol)
	if name == "" {
		return false, nil
	}

	for _, e := range r.table.Entries {
		if !strings.HasPrefix(symbol, e.Prefix) {
			continue
		}

		ok, err := r.load(name, subPath(path, e.Depth), e.Directory)
		if err != nil {
			return false, err
		}
		if ok && r.registry.IsDefined(symbol) {
			r.logger.Debug("resolved", "symbol", symbol, "prefix", e.Prefix)
			return true, nil
		}
	}
	return false, nil
}

// load reads the file for name below root/path, falling back to the
// tokenized names. It reports whether any file was read.
func (r *Resolver) load(name string, path []string, root string) (bool, error) {
	base := filepath.Join(append([]string{root}, path...)...)
	if ok, err := r.read(base, name); ok || err != nil {
		return ok, err
	}

	for _, token := range Tokenize(name) {
		if ok, err := r.read(base, token); ok || err != nil {
			return ok, err
		}
	}
	return false, nil
}

func (r *Resolver) read(base, name string) (bool, error) {
	for _, ext := range r.extensions {
		file := filepath.Join(base, name+ext)
		ok, err := r.loader.TryLoad(file)
		if err != nil {
			return false, errors.Wrap(errors.ErrCodeIO, err, "load %s", file)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Attempts lists, in order, every file Resolve would try for symbol if none
// of them existed. It touches neither the loader nor the registry.
func (r *Resolver) Attempts(symbol string) []string {
	symbol = strings.TrimLeft(symbol, Separator)
	name, path := splitSymbol(symbol)
	if name == "" {
		return nil
	}

	names := append([]string{name}, Tokenize(name)...)
	var out []string
	for _, e := range r.table.Candidates(symbol) {
		base := filepath.Join(append([]string{e.Directory}, subPath(path, e.Depth)...)...)
		for _, n := range names {
			for _, ext := range r.extensions {
				out = append(out, filepath.Join(base, n+ext))
			}
		}
	}
	return out
}

// splitSymbol separates the bare trailing name from the namespace segments.
func splitSymbol(symbol string) (string, []string) {
	segments := strings.Split(symbol, Separator)
	return segments[len(segments)-1], segments[:len(segments)-1]
}

// subPath drops the depth leading segments that belong to the namespace.
func subPath(path []string, depth int) []string {
	if depth >= len(path) {
		return nil
	}
	return path[depth:]
}
