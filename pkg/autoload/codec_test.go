package autoload

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/spoom/pkg/errors"
)

func TestEncodeTOMLKeepsOrder(t *testing.T) {
	table := &Table{Entries: []Entry{
		{Prefix: `App\Vendor\`, Directory: "../vendor/pkg/src", Depth: 2},
		{Prefix: `App\`, Directory: "../src", Depth: 1},
	}}

	var buf bytes.Buffer
	if err := EncodeTOML(&buf, table); err != nil {
		t.Fatalf("EncodeTOML: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "# Code generated") {
		t.Errorf("missing generated header:\n%s", out)
	}
	first := strings.Index(out, `App\\Vendor\\`)
	second := strings.Index(out, `"App\\"`)
	if first < 0 || second < 0 || first > second {
		t.Errorf("entries not in table order:\n%s", out)
	}

	got, err := DecodeTOML(&buf)
	if err != nil {
		t.Fatalf("DecodeTOML: %v", err)
	}
	if diff := cmp.Diff(table.Entries, got.Entries); diff != "" {
		t.Errorf("decoded table mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTOMLRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not toml", "this is = = not toml"},
		{"duplicate prefix", `
[[namespace]]
prefix = 'App\'
directory = "src"
depth = 1

[[namespace]]
prefix = 'App\'
directory = "lib"
depth = 1
`},
		{"negative depth", `
[[namespace]]
prefix = 'App\'
directory = "src"
depth = -1
`},
		{"empty directory", `
[[namespace]]
prefix = 'App\'
directory = ""
depth = 1
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTOML(strings.NewReader(tt.input))
			if !errors.Is(err, errors.ErrCodeIndexInvalid) {
				t.Errorf("DecodeTOML() error = %v, want %s", err, errors.ErrCodeIndexInvalid)
			}
		})
	}
}

func TestDecodeTOMLEmpty(t *testing.T) {
	table, err := DecodeTOML(strings.NewReader(generatedHeader))
	if err != nil {
		t.Fatalf("DecodeTOML: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}
}

func TestEncodePHP(t *testing.T) {
	table := &Table{Entries: []Entry{
		{Prefix: `App\Vendor\`, Directory: "../vendor/pkg/src", Depth: 2},
		{Prefix: `Ext\`, Directory: "/opt/ext/src", Depth: 1},
		{Prefix: `Quote'd\`, Directory: "../lib/", Depth: 1},
	}}

	var buf bytes.Buffer
	if err := EncodePHP(&buf, table); err != nil {
		t.Fatalf("EncodePHP: %v", err)
	}

	want := `<?php return [
  'App\\Vendor\\' => [ __DIR__ . '/../vendor/pkg/src/', 2 ],
  'Ext\\' => [ '/opt/ext/src/', 1 ],
  'Quote\'d\\' => [ __DIR__ . '/../lib/', 1 ]
];
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("EncodePHP() mismatch (-want +got):\n%s", diff)
	}
}
