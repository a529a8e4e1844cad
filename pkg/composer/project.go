package composer

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spoom/pkg/autoload"
	"github.com/matzehuels/spoom/pkg/errors"
)

const (
	// ManifestFile is the root manifest name.
	ManifestFile = "composer.json"
	// InstalledFile is the installed package list, relative to the vendor dir.
	InstalledFile = "composer/installed.json"
	// DefaultVendorDir is used when composer.json does not configure one.
	DefaultVendorDir = "vendor"
	// StagingDirName is the shared destination directory, a sibling of the
	// vendor directory.
	StagingDirName = "spoom"
)

// Precedence decides which declaration wins when the root project and a
// dependency declare the same namespace.
type Precedence string

const (
	// RootLast lists the root package after its dependencies, so the root
	// project overrides them.
	RootLast Precedence = "root-last"
	// RootFirst lists the root package first, so dependencies override it.
	RootFirst Precedence = "root-first"
)

// ParsePrecedence validates a precedence name. Empty means RootLast.
func ParsePrecedence(s string) (Precedence, error) {
	switch Precedence(s) {
	case "", RootLast:
		return RootLast, nil
	case RootFirst:
		return RootFirst, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidConfig, "unknown precedence %q (want %q or %q)", s, RootLast, RootFirst)
	}
}

// Project is a Composer project on disk.
type Project struct {
	Root      string
	VendorDir string
	Package   *Package
	Packages  []*Package
}

// LoadProject reads composer.json from root and the installed package list
// from the vendor directory. An empty vendorDir uses the directory
// configured in composer.json. A project without installed.json has no
// dependencies.
func LoadProject(root, vendorDir string) (*Project, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve project root %s", root)
	}

	manifest := filepath.Join(absRoot, ManifestFile)
	data, err := os.ReadFile(manifest)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", manifest)
	}
	var rootPkg Package
	if err := json.Unmarshal(data, &rootPkg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", manifest)
	}

	if vendorDir == "" {
		vendorDir = rootPkg.Config.VendorDir
	}
	if vendorDir == "" {
		vendorDir = DefaultVendorDir
	}
	if !filepath.IsAbs(vendorDir) {
		vendorDir = filepath.Join(absRoot, vendorDir)
	}

	packages, err := ReadInstalled(filepath.Join(vendorDir, InstalledFile))
	if err != nil {
		return nil, err
	}

	return &Project{
		Root:      absRoot,
		VendorDir: filepath.Clean(vendorDir),
		Package:   &rootPkg,
		Packages:  packages,
	}, nil
}

// ReadInstalled parses an installed.json file in either the Composer 1
// (top-level array) or Composer 2 ({"packages": [...]}) format. A missing
// file yields no packages.
func ReadInstalled(path string) ([]*Package, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}

	var v2 struct {
		Packages []*Package `json:"packages"`
	}
	if err := json.Unmarshal(data, &v2); err == nil {
		return v2.Packages, nil
	}
	var v1 []*Package
	if err := json.Unmarshal(data, &v1); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	return v1, nil
}

// StagingDir returns the shared destination directory for public files and
// the index artifact.
func (p *Project) StagingDir() string {
	return filepath.Join(filepath.Dir(p.VendorDir), StagingDirName)
}

// IsRoot reports whether pkg is the root package.
func (p *Project) IsRoot(pkg *Package) bool { return pkg == p.Package }

// PackageDir returns the directory a package is installed in.
func (p *Project) PackageDir(pkg *Package) (string, error) {
	if p.IsRoot(pkg) {
		return p.Root, nil
	}
	if err := errors.ValidatePackageName(pkg.Name); err != nil {
		return "", err
	}
	return filepath.Join(p.VendorDir, filepath.FromSlash(pkg.Name)), nil
}

// Find returns the installed package called name.
func (p *Project) Find(name string) (*Package, bool) {
	for _, pkg := range p.Packages {
		if pkg.Name == name {
			return pkg, true
		}
	}
	return nil, false
}

// All returns the root package and the installed packages in the order
// dictated by precedence.
func (p *Project) All(precedence Precedence) []*Package {
	all := make([]*Package, 0, len(p.Packages)+1)
	if precedence == RootFirst {
		all = append(all, p.Package)
	}
	all = append(all, p.Packages...)
	if precedence != RootFirst {
		all = append(all, p.Package)
	}
	return all
}

// Mappings collects the PSR-4 declarations of every package whose type is
// in types, in precedence order. Declarations with more than one directory
// and packages with unusable names are skipped with a warning.
func (p *Project) Mappings(types []string, precedence Precedence, logger *log.Logger) []autoload.Mapping {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	var out []autoload.Mapping
	for _, pkg := range p.All(precedence) {
		if !slices.Contains(types, pkg.Type) {
			continue
		}
		dir, err := p.PackageDir(pkg)
		if err != nil {
			logger.Warn("Skipping package", "package", pkg.Name, "err", errors.UserMessage(err))
			continue
		}

		for _, ns := range pkg.Autoload.PSR4 {
			if len(ns.Paths) != 1 {
				logger.Warn("Ignoring multiple psr-4 directories", "package", pkg.Name, "namespace", ns.Prefix, "count", len(ns.Paths))
				continue
			}
			path := filepath.FromSlash(ns.Paths[0])
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			out = append(out, autoload.Mapping{Prefix: ns.Prefix, Directory: filepath.Clean(path)})
		}
	}
	return out
}
