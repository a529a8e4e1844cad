package staging

import (
	"bytes"
	"maps"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/matzehuels/spoom/pkg/composer"
	"github.com/matzehuels/spoom/pkg/errors"
)

// StateFile is the name of the staging record inside the staging directory.
const StateFile = ".staged.toml"

// State records which packages were staged and which destinations they
// produced, so a later run can reconcile without the old package on disk.
type State struct {
	Packages map[string]StagedPackage `toml:"packages"`
}

// StagedPackage is the recorded state of one package.
type StagedPackage struct {
	Version string            `toml:"version"`
	Type    string            `toml:"type"`
	Public  map[string]string `toml:"public,omitempty"`
	Files   []string          `toml:"files,omitempty"`
}

// Package rebuilds the composer metadata needed to unstage the package.
func (s StagedPackage) Package(name string) *composer.Package {
	pkg := &composer.Package{Name: name, Version: s.Version, Type: s.Type}
	pkg.Extra.Spoom.Public = maps.Clone(s.Public)
	return pkg
}

// changed reports whether pkg differs from the recorded state.
func (s StagedPackage) changed(pkg *composer.Package) bool {
	return s.Version != pkg.Version || !maps.Equal(s.Public, pkg.Extra.Spoom.Public)
}

// LoadState reads the state file at path. A missing file yields an empty
// state.
func LoadState(path string) (*State, error) {
	st := &State{Packages: map[string]StagedPackage{}}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return st, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read staging state")
	}
	if _, err := toml.Decode(string(data), st); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "decode staging state %s", path)
	}
	if st.Packages == nil {
		st.Packages = map[string]StagedPackage{}
	}
	return st, nil
}

// Save writes the state to path atomically.
func (s *State) Save(path string) error {
	var buf bytes.Buffer
	buf.WriteString("# Written by spoom sync. DO NOT EDIT.\n\n")
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode staging state")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", dir)
	}
	tmp := filepath.Join(dir, ".spoom-"+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write staging state")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeIO, err, "write staging state")
	}
	return nil
}
