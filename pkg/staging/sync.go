package staging

import (
	"context"
	"sort"

	"github.com/matzehuels/spoom/pkg/composer"
)

// Summary is the outcome of a [Sync] run.
type Summary struct {
	Installed   []string
	Updated     []string
	Uninstalled []string
	Report      Report
}

// Changed reports whether the run touched any package.
func (s Summary) Changed() bool {
	return len(s.Installed)+len(s.Updated)+len(s.Uninstalled) > 0
}

// Sync reconciles the staging directory with the project's installed
// packages: new supported packages are installed, packages whose version
// or public map changed are updated and recorded packages that are gone
// are uninstalled. state is updated in place.
func Sync(ctx context.Context, project *composer.Project, installer *Installer, state *State) (Summary, error) {
	var sum Summary

	current := make(map[string]*composer.Package)
	for _, pkg := range project.Packages {
		if installer.Supports(pkg.Type) {
			current[pkg.Name] = pkg
		}
	}

	for _, name := range sortedNames(current) {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		pkg := current[name]
		prev, ok := state.Packages[name]
		switch {
		case !ok:
			res := installer.Install(pkg)
			sum.Installed = append(sum.Installed, name)
			sum.Report.Add(res.Report)
			state.Packages[name] = record(pkg, res.Staged)
		case prev.changed(pkg):
			res := installer.Update(prev.Package(name), pkg, prev.Files)
			sum.Updated = append(sum.Updated, name)
			sum.Report.Add(res.Report)
			state.Packages[name] = record(pkg, res.Staged)
		}
	}

	var gone []string
	for name := range state.Packages {
		if _, ok := current[name]; !ok {
			gone = append(gone, name)
		}
	}
	sort.Strings(gone)
	for _, name := range gone {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		prev := state.Packages[name]
		res := installer.Uninstall(prev.Package(name), prev.Files)
		sum.Uninstalled = append(sum.Uninstalled, name)
		sum.Report.Add(res.Report)
		delete(state.Packages, name)
	}

	return sum, nil
}

func record(pkg *composer.Package, staged []string) StagedPackage {
	return StagedPackage{
		Version: pkg.Version,
		Type:    pkg.Type,
		Public:  pkg.Extra.Spoom.Public,
		Files:   staged,
	}
}

func sortedNames(m map[string]*composer.Package) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
