package autoload

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/spoom/pkg/cache"
	"github.com/matzehuels/spoom/pkg/errors"
)

func TestBuilderRebuildIsIdempotent(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	path := filepath.Join(root, "spoom", "package.toml")
	mappings := []Mapping{
		{Prefix: `App\`, Directory: filepath.Join(root, "src")},
		{Prefix: `App\Vendor\`, Directory: filepath.Join(root, "vendor", "pkg", "src")},
		{Prefix: `Ext\`, Directory: "/opt/ext"},
	}

	b := NewBuilder(path, WithProjectRoot(root))
	if _, err := b.Rebuild(ctx, mappings); err != nil {
		t.Fatalf("first Rebuild: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := b.Rebuild(ctx, mappings); err != nil {
		t.Fatalf("second Rebuild: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("artifacts differ:\n%s\n---\n%s", first, second)
	}
	if !strings.Contains(string(first), `"../src"`) {
		t.Errorf("directory below the project root should be relative:\n%s", first)
	}

	leftovers, _ := filepath.Glob(filepath.Join(root, "spoom", "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestBuilderRootOverridesDependency(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	path := filepath.Join(root, "spoom", "package.toml")

	dep := filepath.Join(root, "vendor", "acme", "shared", "src")
	own := filepath.Join(root, "src")
	b := NewBuilder(path, WithProjectRoot(root))
	if _, err := b.Rebuild(ctx, []Mapping{
		{Prefix: `Shared\`, Directory: dep},
		{Prefix: `Shared\`, Directory: own},
	}); err != nil {
		t.Fatal(err)
	}

	table, err := ReadTable(ctx, path, nil, 0, nil)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	e, ok := table.Lookup(`Shared\`)
	if !ok {
		t.Fatal("prefix missing from table")
	}
	if e.Directory != own {
		t.Errorf("Directory = %q, want %q", e.Directory, own)
	}
}

func TestBuilderWritesPHPArtifact(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	php := filepath.Join(root, "spoom", "package.php")

	b := NewBuilder(filepath.Join(root, "spoom", "package.toml"), WithProjectRoot(root), WithPHPArtifact(php))
	if _, err := b.Rebuild(ctx, []Mapping{{Prefix: `App\`, Directory: filepath.Join(root, "src")}}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(php)
	if err != nil {
		t.Fatalf("PHP artifact missing: %v", err)
	}
	want := "<?php return [\n  'App\\\\' => [ __DIR__ . '/../src/', 1 ]\n];\n"
	if string(data) != want {
		t.Errorf("PHP artifact = %q, want %q", data, want)
	}
}

func TestBuilderWriteFailure(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "spoom")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := NewBuilder(filepath.Join(blocker, "package.toml"))
	_, err := b.Rebuild(context.Background(), []Mapping{{Prefix: `App\`, Directory: "/src"}})
	if !errors.Is(err, errors.ErrCodeIndexWrite) {
		t.Errorf("Rebuild() error = %v, want %s", err, errors.ErrCodeIndexWrite)
	}
}

func TestBuilderInvalidatesCachedTable(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	path := filepath.Join(root, "spoom", "package.toml")
	tc, err := cache.NewFileCache(filepath.Join(root, "cache"))
	if err != nil {
		t.Fatal(err)
	}

	b := NewBuilder(path, WithTableCache(tc))
	if _, err := b.Rebuild(ctx, []Mapping{{Prefix: `Old\`, Directory: "/old"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadTable(ctx, path, tc, 0, nil); err != nil {
		t.Fatal(err)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := tc.Get(ctx, cache.TableKey(path, old)); !hit {
		t.Fatal("ReadTable should populate the cache")
	}

	if _, err := b.Rebuild(ctx, []Mapping{{Prefix: `New\`, Directory: "/new"}}); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := tc.Get(ctx, cache.TableKey(path, old)); hit {
		t.Fatal("Rebuild should invalidate the cached table")
	}

	table, err := ReadTable(ctx, path, tc, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := table.Lookup(`New\`); !ok {
		t.Errorf("reader observed a stale table: %+v", table.Entries)
	}
}
