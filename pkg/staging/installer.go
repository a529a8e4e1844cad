package staging

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spoom/pkg/composer"
)

// DefaultTypes lists the package types the installer handles.
var DefaultTypes = []string{"spoom"}

// Result describes one lifecycle step: the destinations now staged for the
// package and what happened on disk.
type Result struct {
	Staged []string
	Report Report
}

// Installer stages public files on install, reconciles them on update and
// removes them on uninstall.
type Installer struct {
	manager *Manager
	types   []string
	logger  *log.Logger
}

// NewInstaller returns an Installer for the given package types. A nil
// types slice uses [DefaultTypes].
func NewInstaller(manager *Manager, types []string, logger *log.Logger) *Installer {
	if types == nil {
		types = DefaultTypes
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Installer{manager: manager, types: types, logger: logger}
}

// Manager returns the underlying file manager.
func (i *Installer) Manager() *Manager { return i.manager }

// Supports reports whether packageType is handled by the installer.
func (i *Installer) Supports(packageType string) bool {
	return slices.Contains(i.types, packageType)
}

// Install stages the package's public files.
func (i *Installer) Install(pkg *composer.Package) Result {
	list := i.manager.FileList(pkg, pkg.Extra.Spoom.Public)
	if len(list) == 0 {
		return Result{}
	}
	i.logger.Info("Staging public files", "package", pkg.Name, "files", len(list))
	return Result{Staged: destinations(list), Report: i.manager.Create(list)}
}

// Update stages target's public files and removes destinations that the
// initial version staged but target no longer does. previous carries the
// destinations recorded when initial was staged; it may be nil.
//
// Destinations are derived from initial's own public map, so a file moving
// between versions is removed from its old place.
func (i *Installer) Update(initial, target *composer.Package, previous []string) Result {
	next := i.manager.FileList(target, target.Extra.Spoom.Public)
	old := i.manager.FileList(initial, initial.Extra.Spoom.Public)

	keep := make(map[string]bool, len(next))
	for _, dst := range next {
		keep[dst] = true
	}

	var stale []string
	for _, dst := range append(destinations(old), previous...) {
		if !keep[dst] {
			stale = append(stale, dst)
		}
	}

	var r Report
	if len(stale) > 0 {
		i.logger.Info("Removing stale public files", "package", target.Name, "files", len(stale))
		r.Add(i.manager.Remove(stale))
	}
	if len(next) > 0 {
		i.logger.Info("Staging public files", "package", target.Name, "files", len(next))
		r.Add(i.manager.Create(next))
	}
	return Result{Staged: destinations(next), Report: r}
}

// Uninstall removes the package's staged files. previous carries the
// destinations recorded at install time; it may be nil.
func (i *Installer) Uninstall(pkg *composer.Package, previous []string) Result {
	list := append(destinations(i.manager.FileList(pkg, pkg.Extra.Spoom.Public)), previous...)
	if len(list) == 0 {
		return Result{}
	}
	i.logger.Info("Removing public files", "package", pkg.Name, "files", len(list))
	return Result{Report: i.manager.Remove(list)}
}
