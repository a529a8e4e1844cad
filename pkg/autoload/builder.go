package autoload

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/spoom/pkg/cache"
	"github.com/matzehuels/spoom/pkg/errors"
	"github.com/matzehuels/spoom/pkg/observability"
)

// Artifact file names inside the staging directory.
const (
	IndexFile    = "package.toml"
	PHPIndexFile = "package.php"
)

// Builder writes index artifacts.
type Builder struct {
	path    string
	phpPath string
	root    string
	cache   cache.Cache
	logger  *log.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithPHPArtifact also writes the table as a PHP array file at path.
func WithPHPArtifact(path string) BuilderOption {
	return func(b *Builder) { b.phpPath = path }
}

// WithProjectRoot stores directories below root relative to the artifact,
// so the project tree can be moved without a rebuild.
func WithProjectRoot(root string) BuilderOption {
	return func(b *Builder) { b.root = root }
}

// WithTableCache sets the compiled table cache that every write
// invalidates.
func WithTableCache(c cache.Cache) BuilderOption {
	return func(b *Builder) { b.cache = c }
}

// WithBuilderLogger sets the diagnostics logger.
func WithBuilderLogger(l *log.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder returns a Builder writing the TOML artifact to path.
func NewBuilder(path string, opts ...BuilderOption) *Builder {
	b := &Builder{
		path:   path,
		cache:  cache.NewNullCache(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Path returns the TOML artifact path.
func (b *Builder) Path() string { return b.path }

// Rebuild builds a fresh table from mappings and writes it, discarding
// whatever index existed before.
func (b *Builder) Rebuild(ctx context.Context, mappings []Mapping) (*Table, error) {
	start := time.Now()
	t := Build(mappings)
	b.logger.Info("Generating autoload index", "namespaces", t.Len(), "path", b.path)
	err := b.Write(ctx, t)
	observability.Index().OnIndexWrite(ctx, b.path, t.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("Index written", "elapsed", time.Since(start).Round(time.Millisecond))
	return t, nil
}

// Write replaces the artifact with t. The destination directory is created
// when missing and each file is renamed into place in one step. Afterwards
// the cached copy of the replaced artifact is dropped.
func (b *Builder) Write(ctx context.Context, t *Table) error {
	previous, _ := os.ReadFile(b.path)

	content, err := b.writeArtifact(b.path, t, EncodeTOML)
	if err != nil {
		return err
	}
	if b.phpPath != "" {
		if _, err := b.writeArtifact(b.phpPath, t, EncodePHP); err != nil {
			return err
		}
	}

	if previous == nil || bytes.Equal(previous, content) {
		return nil
	}
	if err := b.cache.Delete(ctx, cache.TableKey(b.path, previous)); err != nil {
		return errors.Wrap(errors.ErrCodeIndexWrite, err, "invalidate cached index for %s", b.path)
	}
	return nil
}

func (b *Builder) writeArtifact(path string, t *Table, encode func(io.Writer, *Table) error) ([]byte, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIndexWrite, err, "create index directory %s", dir)
	}

	var buf bytes.Buffer
	if err := encode(&buf, t.Relative(b.root, dir)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIndexWrite, err, "encode %s", path)
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIndexWrite, err, "write %s", path)
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data next to path and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + "." + uuid.NewString() + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
