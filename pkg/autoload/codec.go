package autoload

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/spoom/pkg/errors"
)

// generatedHeader marks the artifact as machine-generated.
const generatedHeader = "# Code generated by spoom dump. DO NOT EDIT.\n\n"

type document struct {
	Namespaces []record `toml:"namespace"`
}

type record struct {
	Prefix    string `toml:"prefix"`
	Directory string `toml:"directory"`
	Depth     int    `toml:"depth"`
}

// EncodeTOML writes t as a TOML document with one [[namespace]] table per
// entry, in table order. Equal tables always encode to equal bytes.
func EncodeTOML(w io.Writer, t *Table) error {
	doc := document{Namespaces: make([]record, 0, t.Len())}
	for _, e := range t.Entries {
		doc.Namespaces = append(doc.Namespaces, record{Prefix: e.Prefix, Directory: e.Directory, Depth: e.Depth})
	}

	var buf bytes.Buffer
	buf.WriteString(generatedHeader)
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// DecodeTOML reads a table written by EncodeTOML. Entry order is kept as
// stored. Duplicate prefixes and negative depths are rejected.
func DecodeTOML(r io.Reader) (*Table, error) {
	var doc document
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIndexInvalid, err, "decode index")
	}

	t := &Table{Entries: make([]Entry, 0, len(doc.Namespaces))}
	seen := make(map[string]bool, len(doc.Namespaces))
	for i, rec := range doc.Namespaces {
		if seen[rec.Prefix] {
			return nil, errors.New(errors.ErrCodeIndexInvalid, "duplicate prefix %q at entry %d", rec.Prefix, i)
		}
		if rec.Depth < 0 {
			return nil, errors.New(errors.ErrCodeIndexInvalid, "negative depth for prefix %q", rec.Prefix)
		}
		if rec.Directory == "" {
			return nil, errors.New(errors.ErrCodeIndexInvalid, "empty directory for prefix %q", rec.Prefix)
		}
		seen[rec.Prefix] = true
		t.Entries = append(t.Entries, Entry{Prefix: rec.Prefix, Directory: rec.Directory, Depth: rec.Depth})
	}
	return t, nil
}

// EncodePHP writes t as a PHP file returning an ordered array of
// prefix => [directory, depth]. Relative directories are anchored to the
// artifact's own directory through __DIR__.
//
//	<?php return [
//	  'App\\Vendor\\' => [ __DIR__ . '/../vendor/pkg/src/', 2 ],
//	  'App\\' => [ '/opt/app/src/', 1 ]
//	];
func EncodePHP(w io.Writer, t *Table) error {
	lines := make([]string, 0, t.Len())
	for _, e := range t.Entries {
		dir := strings.TrimSuffix(e.Directory, "/") + "/"
		value := "'" + phpQuote(dir) + "'"
		if !path.IsAbs(e.Directory) && !isWindowsAbs(e.Directory) {
			value = "__DIR__ . '/" + phpQuote(dir) + "'"
		}
		lines = append(lines, fmt.Sprintf("  '%s' => [ %s, %d ]", phpQuote(e.Prefix), value, e.Depth))
	}
	_, err := io.WriteString(w, "<?php return [\n"+strings.Join(lines, ",\n")+"\n];\n")
	return err
}

// phpQuote escapes s for a single-quoted PHP string.
func phpQuote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

func isWindowsAbs(p string) bool {
	return len(p) >= 3 && p[1] == ':' && (p[2] == '/' || p[2] == '\\')
}
