package autoload

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"
)

// Separator delimits namespace segments in fully qualified symbol names.
const Separator = `\`

// Mapping is one namespace prefix declared by a package, pointing at the
// absolute directory that holds its sources.
type Mapping struct {
	Prefix    string
	Directory string
}

// Entry is one row of the index.
type Entry struct {
	// Prefix is the namespace prefix, usually with a trailing separator.
	Prefix string `json:"prefix"`
	// Directory is the root directory of the prefix.
	Directory string `json:"directory"`
	// Depth is the number of namespace segments in Prefix. That many leading
	// segments of a symbol belong to the namespace rather than to a
	// subdirectory of Directory.
	Depth int `json:"depth"`
}

// Table is the ordered index: longest prefix first, prefixes unique.
type Table struct {
	Entries []Entry `json:"entries"`
}

// SegmentCount returns the number of non-empty namespace segments in prefix.
//
//	SegmentCount(`App\Vendor\`) // 2
//	SegmentCount(`App`)         // 1
//	SegmentCount(``)            // 0
func SegmentCount(prefix string) int {
	n := 0
	for _, s := range strings.Split(prefix, Separator) {
		if s != "" {
			n++
		}
	}
	return n
}

// Build turns mappings into a Table.
//
// A prefix declared more than once keeps the directory of its last
// occurrence but the position of its first, so callers decide precedence
// purely through the order of mappings. Entries are then stably sorted by
// descending prefix length, which makes the first match during a scan the
// most specific one.
func Build(mappings []Mapping) *Table {
	index := make(map[string]int, len(mappings))
	entries := make([]Entry, 0, len(mappings))
	for _, m := range mappings {
		e := Entry{Prefix: m.Prefix, Directory: m.Directory, Depth: SegmentCount(m.Prefix)}
		if i, ok := index[m.Prefix]; ok {
			entries[i] = e
			continue
		}
		index[m.Prefix] = len(entries)
		entries = append(entries, e)
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(len(b.Prefix), len(a.Prefix))
	})
	return &Table{Entries: entries}
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Entries)
}

// Lookup returns the entry for prefix.
func (t *Table) Lookup(prefix string) (Entry, bool) {
	for _, e := range t.Entries {
		if e.Prefix == prefix {
			return e, true
		}
	}
	return Entry{}, false
}

// Candidates returns, in scan order, the entries whose prefix is a literal
// prefix of symbol.
func (t *Table) Candidates(symbol string) []Entry {
	symbol = strings.TrimLeft(symbol, Separator)
	var out []Entry
	for _, e := range t.Entries {
		if strings.HasPrefix(symbol, e.Prefix) {
			out = append(out, e)
		}
	}
	return out
}

// Relative returns a copy of t where directories below root are expressed
// relative to base using forward slashes. Other directories are kept as
// absolute paths.
func (t *Table) Relative(root, base string) *Table {
	out := &Table{Entries: slices.Clone(t.Entries)}
	if root == "" {
		return out
	}
	for i, e := range out.Entries {
		if !within(root, e.Directory) {
			continue
		}
		if rel, err := filepath.Rel(base, e.Directory); err == nil {
			out.Entries[i].Directory = filepath.ToSlash(rel)
		}
	}
	return out
}

// Absolute returns a copy of t where relative directories are resolved
// against base.
func (t *Table) Absolute(base string) *Table {
	out := &Table{Entries: slices.Clone(t.Entries)}
	for i, e := range out.Entries {
		dir := filepath.FromSlash(e.Directory)
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(base, dir)
		}
		out.Entries[i].Directory = filepath.Clean(dir)
	}
	return out
}

// within reports whether path is root or lies below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
