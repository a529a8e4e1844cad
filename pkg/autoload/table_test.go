package autoload

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSegmentCount(t *testing.T) {
	tests := []struct {
		prefix string
		want   int
	}{
		{`App\`, 1},
		{`App\Vendor\`, 2},
		{`A\B`, 2},
		{`A`, 1},
		{`\Leading\`, 1},
		{``, 0},
	}
	for _, tt := range tests {
		if got := SegmentCount(tt.prefix); got != tt.want {
			t.Errorf("SegmentCount(%q) = %d, want %d", tt.prefix, got, tt.want)
		}
	}
}

func TestBuildOrdersLongestPrefixFirst(t *testing.T) {
	table := Build([]Mapping{
		{Prefix: `A\`, Directory: "/a"},
		{Prefix: `A\B\`, Directory: "/ab"},
		{Prefix: `C\`, Directory: "/c"},
		{Prefix: `A\B\C\`, Directory: "/abc"},
	})

	want := []Entry{
		{Prefix: `A\B\C\`, Directory: "/abc", Depth: 3},
		{Prefix: `A\B\`, Directory: "/ab", Depth: 2},
		{Prefix: `A\`, Directory: "/a", Depth: 1},
		{Prefix: `C\`, Directory: "/c", Depth: 1},
	}
	if diff := cmp.Diff(want, table.Entries); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildLastMappingWins(t *testing.T) {
	table := Build([]Mapping{
		{Prefix: `Core\`, Directory: "/vendor/dep/src"},
		{Prefix: `Util\`, Directory: "/vendor/util/src"},
		{Prefix: `Core\`, Directory: "/proj/src"},
	})

	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	e, ok := table.Lookup(`Core\`)
	if !ok {
		t.Fatal(`Lookup(Core\) not found`)
	}
	if e.Directory != "/proj/src" {
		t.Errorf("Directory = %q, want %q", e.Directory, "/proj/src")
	}
	// Equal lengths keep first-insertion order.
	if table.Entries[0].Prefix != `Core\` {
		t.Errorf("Entries[0] = %q, want %q", table.Entries[0].Prefix, `Core\`)
	}
}

func TestBuildEmpty(t *testing.T) {
	if got := Build(nil).Len(); got != 0 {
		t.Errorf("Build(nil).Len() = %d, want 0", got)
	}
}

func TestCandidates(t *testing.T) {
	table := Build([]Mapping{
		{Prefix: `App\`, Directory: "/proj/src"},
		{Prefix: `App\Vendor\`, Directory: "/proj/vendor/pkg/src"},
		{Prefix: `Lib\`, Directory: "/lib"},
	})

	var got []string
	for _, e := range table.Candidates(`\App\Vendor\Widget`) {
		got = append(got, e.Prefix)
	}
	want := []string{`App\Vendor\`, `App\`}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Candidates() mismatch (-want +got):\n%s", diff)
	}
}

func TestRelativeAbsolute(t *testing.T) {
	root := filepath.FromSlash("/proj")
	base := filepath.FromSlash("/proj/spoom")
	table := &Table{Entries: []Entry{
		{Prefix: `App\`, Directory: filepath.FromSlash("/proj/src"), Depth: 1},
		{Prefix: `Ext\`, Directory: filepath.FromSlash("/opt/ext/src"), Depth: 1},
	}}

	rel := table.Relative(root, base)
	if got := rel.Entries[0].Directory; got != "../src" {
		t.Errorf("relative directory = %q, want %q", got, "../src")
	}
	if got := rel.Entries[1].Directory; got != filepath.FromSlash("/opt/ext/src") {
		t.Errorf("outside directory = %q, want unchanged", got)
	}
	if table.Entries[0].Directory != filepath.FromSlash("/proj/src") {
		t.Error("Relative must not modify the receiver")
	}

	abs := rel.Absolute(base)
	if diff := cmp.Diff(table.Entries, abs.Entries); diff != "" {
		t.Errorf("Absolute(Relative()) mismatch (-want +got):\n%s", diff)
	}
}
