package driven

// Cache answers questions about files in the local content cache.
type Cache interface {
	// Exists reports whether a regular file is present at path.
	Exists(path string) bool

	// Digest returns the hex digest of the file at path.
	Digest(path string) (string, error)
}
