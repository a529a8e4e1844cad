package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spoom/pkg/autoload"
	"github.com/matzehuels/spoom/pkg/cache"
	"github.com/matzehuels/spoom/pkg/composer"
	"github.com/matzehuels/spoom/pkg/config"
	"github.com/matzehuels/spoom/pkg/staging"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "spoom"

	// defaultAddr is the listen address of spoom serve.
	defaultAddr = "127.0.0.1:8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	projectDir string
	vendorDir  string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Workspace
// =============================================================================

// workspace is a loaded project together with its spoom.toml.
type workspace struct {
	project *composer.Project
	config  *config.Config
}

// openWorkspace reads spoom.toml and the Composer metadata of the project
// selected by --project and --vendor-dir.
func (c *CLI) openWorkspace() (*workspace, error) {
	root := c.projectDir
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	project, err := composer.LoadProject(root, c.vendorDir)
	if err != nil {
		return nil, err
	}
	return &workspace{project: project, config: cfg}, nil
}

// stagingDir is the destination root for public files and the index.
func (w *workspace) stagingDir() string {
	dir := w.config.Staging.Directory
	if dir == "" {
		return w.project.StagingDir()
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(w.project.Root, dir)
	}
	return filepath.Clean(dir)
}

func (w *workspace) indexPath() string {
	return filepath.Join(w.stagingDir(), autoload.IndexFile)
}

func (w *workspace) phpIndexPath() string {
	return filepath.Join(w.stagingDir(), autoload.PHPIndexFile)
}

func (w *workspace) statePath() string {
	return filepath.Join(w.stagingDir(), staging.StateFile)
}

// watchedFiles lists the inputs whose changes require a sync.
func (w *workspace) watchedFiles() []string {
	return []string{
		filepath.Join(w.project.Root, composer.ManifestFile),
		filepath.Join(w.project.VendorDir, filepath.FromSlash(composer.InstalledFile)),
		filepath.Join(w.project.Root, config.FileName),
	}
}

// builder returns an index builder honoring the workspace configuration.
func (w *workspace) builder(tables cache.Cache, logger *log.Logger) *autoload.Builder {
	opts := []autoload.BuilderOption{
		autoload.WithProjectRoot(w.project.Root),
		autoload.WithTableCache(tables),
		autoload.WithBuilderLogger(logger),
	}
	if w.config.Autoload.PHP {
		opts = append(opts, autoload.WithPHPArtifact(w.phpIndexPath()))
	}
	return autoload.NewBuilder(w.indexPath(), opts...)
}

// dump regenerates the index from the project's PSR-4 declarations.
func (w *workspace) dump(ctx context.Context, tables cache.Cache, logger *log.Logger) (*autoload.Table, error) {
	mappings := w.project.Mappings(w.config.Autoload.Types, w.config.Precedence(), logger)
	return w.builder(tables, logger).Rebuild(ctx, mappings)
}

// installer returns the staging installer for the workspace.
func (w *workspace) installer(logger *log.Logger) *staging.Installer {
	manager := staging.NewManager(w.project, w.stagingDir(), logger)
	return staging.NewInstaller(manager, w.config.Staging.Types, logger)
}

// resolverOptions returns the resolver options for the workspace.
func (w *workspace) resolverOptions(tables cache.Cache, logger *log.Logger) []autoload.Option {
	return []autoload.Option{
		autoload.WithExtensions(w.config.Autoload.Extensions...),
		autoload.WithCache(tables, w.config.Cache.TTL.Duration),
		autoload.WithLogger(logger),
	}
}

// =============================================================================
// Cache
// =============================================================================

// openCache opens the table cache configured in spoom.toml. --no-cache
// disables it.
func (c *CLI) openCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	inner, err := cache.Open(ctx, cache.Options{
		Backend: cfg.Cache.Backend,
		Dir:     dir,
		Redis:   cache.RedisOptions{Addr: cfg.Cache.RedisAddr},
	})
	if err != nil {
		return nil, err
	}
	return cache.NewScoped(inner, appName+":"), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/spoom/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
