package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// TableKey returns the cache key of the decoded index stored at path with
// the given artifact content. The key format is table:hash(path):hash(content),
// so an entry only matches the exact bytes it was decoded from.
// Relative paths are made absolute so every process agrees on the key.
func TableKey(path string, content []byte) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return "table:" + Hash([]byte(filepath.Clean(path))) + ":" + Hash(content)
}
