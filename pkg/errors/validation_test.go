package errors

import (
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "spoom/core", false},
		{"valid with dash", "acme/my-package", false},
		{"valid with underscore", "acme/my_package", false},
		{"valid with dot", "acme/my.package", false},
		{"valid mixed case", "Acme/Widget", false},

		{"empty", "", true},
		{"no vendor", "package", true},
		{"too many separators", "a/b/c", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "acme/../bar", true},
		{"path traversal //", "acme//bar", true},
		{"null byte", "acme/foo\x00bar", true},
		{"backslash", "acme\\bar", true},
		{"newline", "acme/foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid file", "public/app.css", false},
		{"valid dir", "assets", false},
		{"valid current dir", ".", false},
		{"inner dots", "assets/../public", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"parent", "..", true},
		{"escapes", "assets/../../etc", true},
		{"control char", "foo\x01bar", true},
		{"too long", string(make([]byte, 600)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != ErrCodeInvalidPath {
				t.Errorf("GetCode() = %v, want %v", GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidPackage,
		ErrCodeInvalidManifest,
		ErrCodeInvalidConfig,
		ErrCodeInvalidPath,
		ErrCodeIndexNotFound,
		ErrCodeIndexInvalid,
		ErrCodeIndexWrite,
		ErrCodeIO,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
