package composer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Package is the subset of Composer package metadata spoom needs.
type Package struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Type     string   `json:"type"`
	Autoload Autoload `json:"autoload"`
	Extra    Extra    `json:"extra"`
	Config   Config   `json:"config"`
}

// Autoload holds the PSR-4 section of a package's autoload declaration.
type Autoload struct {
	PSR4 NamespaceMap `json:"psr-4"`
}

// Extra holds the spoom specific "extra" section.
type Extra struct {
	Spoom struct {
		// Public maps a source path relative to the package directory to a
		// destination relative to the staging directory.
		Public map[string]string `json:"public"`
	} `json:"spoom"`
}

// Config holds the root package's Composer configuration.
type Config struct {
	VendorDir string `json:"vendor-dir"`
}

// HasPublic reports whether the package declares public files.
func (p *Package) HasPublic() bool { return len(p.Extra.Spoom.Public) > 0 }

// NamespaceEntry is one PSR-4 declaration.
type NamespaceEntry struct {
	Prefix string
	Paths  []string
}

// NamespaceMap is a PSR-4 map in declaration order. Values may be a single
// path or a list of paths.
type NamespaceMap []NamespaceEntry

// UnmarshalJSON decodes the JSON object token by token to keep key order.
func (m *NamespaceMap) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	// Composer writes an empty map as [].
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		var empty []json.RawMessage
		if err := json.Unmarshal(data, &empty); err != nil || len(empty) != 0 {
			return fmt.Errorf("psr-4: expected an object")
		}
		*m = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return fmt.Errorf("psr-4: expected an object")
	}

	var out NamespaceMap
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("psr-4: %w", err)
		}
		prefix, ok := tok.(string)
		if !ok {
			return fmt.Errorf("psr-4: unexpected key %v", tok)
		}
		var paths PathList
		if err := dec.Decode(&paths); err != nil {
			return fmt.Errorf("psr-4 %q: %w", prefix, err)
		}
		out = append(out, NamespaceEntry{Prefix: prefix, Paths: paths})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("psr-4: %w", err)
	}
	*m = out
	return nil
}

// PathList is a JSON value that is either a string or a list of strings.
type PathList []string

// UnmarshalJSON accepts "path" and ["path", ...].
func (l *PathList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = PathList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected a path or a list of paths")
	}
	*l = many
	return nil
}
