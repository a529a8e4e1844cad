package staging

import (
	"cmp"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spoom/pkg/composer"
	"github.com/matzehuels/spoom/pkg/errors"
)

// Report counts the outcome of a staging batch.
type Report struct {
	Copied  int
	Removed int
	Skipped int
	Failed  int
}

// Add accumulates o into r.
func (r *Report) Add(o Report) {
	r.Copied += o.Copied
	r.Removed += o.Removed
	r.Skipped += o.Skipped
	r.Failed += o.Failed
}

// Manager copies and removes public files.
type Manager struct {
	project *composer.Project
	dest    string
	logger  *log.Logger
}

// NewManager returns a Manager staging into dest. An empty dest uses the
// project's staging directory.
func NewManager(project *composer.Project, dest string, logger *log.Logger) *Manager {
	if dest == "" {
		dest = project.StagingDir()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{project: project, dest: dest, logger: logger}
}

// Dir returns the staging directory.
func (m *Manager) Dir() string { return m.dest }

// FileList expands a public map into absolute source and destination
// paths. Directory sources contribute every file below them. Entries that
// cannot be expanded are reported and left out.
func (m *Manager) FileList(pkg *composer.Package, public map[string]string) map[string]string {
	out := make(map[string]string)
	if len(public) == 0 {
		return out
	}

	dir, err := m.project.PackageDir(pkg)
	if err != nil {
		m.logger.Warn("Skip public copy", "package", pkg.Name, "err", errors.UserMessage(err))
		return out
	}

	sources := make([]string, 0, len(public))
	for src := range public {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	for _, src := range sources {
		dst := public[src]
		if err := validatePair(src, dst); err != nil {
			m.logger.Warn("Skip public entry", "package", pkg.Name, "source", src, "err", errors.UserMessage(err))
			continue
		}

		source := filepath.Join(dir, filepath.FromSlash(src))
		target := filepath.Join(m.dest, filepath.FromSlash(dst))

		info, err := os.Stat(source)
		if err != nil || !info.IsDir() {
			out[source] = target
			continue
		}

		err = filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(source, path)
			if err != nil {
				return err
			}
			out[path] = filepath.Join(target, rel)
			return nil
		})
		if err != nil {
			m.logger.Warn("Skip public copy, due to an error", "package", pkg.Name, "source", src, "err", err)
		}
	}
	return out
}

func validatePair(src, dst string) error {
	if err := errors.ValidatePath(src); err != nil {
		return err
	}
	return errors.ValidatePath(dst)
}

// Create copies every source to its destination. Existing destinations are
// left alone; one whose size differs from the source is reported.
func (m *Manager) Create(list map[string]string) Report {
	var r Report
	for _, source := range sortedKeys(list) {
		target := list[source]

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			m.logger.Warn("Skip path copy, due to an error", "source", source, "destination", target, "err", err)
			r.Failed++
			continue
		}

		existing, err := os.Stat(target)
		if err == nil {
			src, serr := os.Stat(source)
			if serr != nil || src.Size() != existing.Size() {
				m.logger.Warn("Skip path copy, it already exists", "source", source, "destination", target)
			}
			r.Skipped++
			continue
		}

		if err := copyFile(source, target); err != nil {
			m.logger.Warn("Skip path copy, due to an error", "source", source, "destination", target, "err", err)
			r.Failed++
			continue
		}
		m.logger.Debug("Copied", "source", source, "destination", target)
		r.Copied++
	}
	return r
}

// Remove deletes the given files, deepest first, then prunes directories
// that became empty up to the staging directory. Paths outside the staging
// directory are refused and counted as failed.
func (m *Manager) Remove(list []string) Report {
	var r Report

	paths := slices.Clone(list)
	slices.SortFunc(paths, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	paths = slices.Compact(paths)

	dirs := make(map[string]bool)
	for _, path := range paths {
		if filepath.Clean(path) == filepath.Clean(m.dest) || !within(m.dest, path) {
			m.logger.Warn("Refusing to remove path outside staging directory", "path", path, "staging", m.dest)
			r.Failed++
			continue
		}
		info, err := os.Lstat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if err := os.Remove(path); err != nil {
			m.logger.Warn("Skip path remove", "path", path, "err", err)
			r.Failed++
			continue
		}
		r.Removed++
		dirs[filepath.Dir(path)] = true
	}

	pending := make([]string, 0, len(dirs))
	for d := range dirs {
		pending = append(pending, d)
	}
	slices.SortFunc(pending, func(a, b string) int { return cmp.Compare(len(b), len(a)) })
	for _, dir := range pending {
		m.prune(dir)
	}
	return r
}

// prune removes dir and its parents while they are empty and below the
// staging directory.
func (m *Manager) prune(dir string) {
	for dir != m.dest && within(m.dest, dir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			m.logger.Warn("Skip path remove", "path", dir, "err", err)
			return
		}
		dir = filepath.Dir(dir)
	}
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// copyFile copies src to dst, keeping the source permission bits.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// destinations returns the sorted values of a file list.
func destinations(list map[string]string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
