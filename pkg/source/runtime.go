package source

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spoom/pkg/errors"
)

// Runtime records the symbols declared by the files it loads.
//
// It is safe for concurrent use.
type Runtime struct {
	mu      sync.Mutex
	scanner *Scanner
	symbols map[string]string
	loaded  map[string]bool
	logger  *log.Logger
}

// NewRuntime returns an empty Runtime.
func NewRuntime(logger *log.Logger) *Runtime {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runtime{
		scanner: NewScanner(),
		symbols: make(map[string]string),
		loaded:  make(map[string]bool),
		logger:  logger,
	}
}

func normalize(symbol string) string {
	return strings.ToLower(strings.TrimLeft(symbol, `\`))
}

// TryLoad reads and scans the file at path. A missing path, or a
// directory, is (false, nil). Loading the same file twice is a no-op.
func (r *Runtime) TryLoad(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded[path] {
		return true, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	decls, err := r.scanner.Scan(context.Background(), content)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeIO, err, "scan %s", path)
	}

	r.loaded[path] = true
	for _, d := range decls {
		key := normalize(d.Name)
		if prev, ok := r.symbols[key]; ok {
			r.logger.Warn("Symbol declared twice", "symbol", d.Name, "first", prev, "second", path)
			continue
		}
		r.symbols[key] = path
	}
	r.logger.Debug("Loaded", "path", path, "declarations", len(decls))
	return true, nil
}

// IsDefined reports whether a loaded file declared symbol. Symbols compare
// case-insensitively; a leading separator is ignored.
func (r *Runtime) IsDefined(symbol string) bool {
	_, ok := r.Origin(symbol)
	return ok
}

// Origin returns the file that declared symbol.
func (r *Runtime) Origin(symbol string) (string, bool) {
	key := normalize(symbol)
	if key == "" {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	path, ok := r.symbols[key]
	return path, ok
}

// Declare records symbol as defined by path without reading it.
func (r *Runtime) Declare(symbol, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.symbols[normalize(symbol)] = path
}

// Symbols returns the lowercased names of all recorded symbols, sorted.
func (r *Runtime) Symbols() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.symbols))
	for s := range r.symbols {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Files returns the number of files loaded.
func (r *Runtime) Files() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.loaded)
}
