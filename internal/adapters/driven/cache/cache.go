// Package cache answers presence and digest questions about the local content cache.
package cache

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
)

// Ensure Local implements the interface.
var _ driven.Cache = (*Local)(nil)

// Local inspects cache files on the local filesystem. Digests are unkeyed BLAKE3.
type Local struct{}

// NewLocal creates a local cache inspector.
func NewLocal() *Local {
	return &Local{}
}

// Exists reports whether a regular file is present at path.
func (Local) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Digest returns the hex BLAKE3-256 digest of the file at path.
func (Local) Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
