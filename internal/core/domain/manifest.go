package domain

import (
	"path"
	"strings"
)

// ContentDescriptor describes one remote content item listed in a manifest.
// It is created by parsing one manifest line and never mutated.
type ContentDescriptor struct {
	// LogicalName is the slash separated name the server publishes the content under.
	LogicalName string

	// ContentHash identifies the content bytes. It doubles as cache key and URL component.
	ContentHash string

	// URL is the download location derived from the content hash.
	URL string

	// Size is the content size in bytes, or 0 when the manifest does not state it.
	Size int64

	// Raw marks content that bypasses extraction and is copied to the output tree as is.
	Raw bool
}

// Folder returns the logical folder of the descriptor ("." for top level names).
func (d ContentDescriptor) Folder() string {
	return path.Dir(d.LogicalName)
}

// Manifest is an ordered listing of content descriptors for one region.
// It is loaded once and replaced wholesale on reload.
type Manifest struct {
	// Region is the region the manifest was published for.
	Region string

	entries []ContentDescriptor
	byName  map[string]int
}

// NewManifest creates a manifest from descriptors, keeping their order.
// A repeated logical name replaces the earlier descriptor in place.
func NewManifest(region string, descriptors []ContentDescriptor) *Manifest {
	m := &Manifest{
		Region:  region,
		entries: make([]ContentDescriptor, 0, len(descriptors)),
		byName:  make(map[string]int, len(descriptors)),
	}
	for _, d := range descriptors {
		m.put(d)
	}
	return m
}

func (m *Manifest) put(d ContentDescriptor) {
	if i, ok := m.byName[d.LogicalName]; ok {
		m.entries[i] = d
		return
	}
	m.byName[d.LogicalName] = len(m.entries)
	m.entries = append(m.entries, d)
}

// Get returns the descriptor for a logical name.
func (m *Manifest) Get(name string) (ContentDescriptor, bool) {
	if m == nil {
		return ContentDescriptor{}, false
	}
	i, ok := m.byName[name]
	if !ok {
		return ContentDescriptor{}, false
	}
	return m.entries[i], true
}

// Entries returns a copy of the descriptors in manifest order.
func (m *Manifest) Entries() []ContentDescriptor {
	if m == nil {
		return nil
	}
	out := make([]ContentDescriptor, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of descriptors.
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// FlattenPath joins the segments of a slash separated path with an underscore,
// producing a name that is safe to use as a single directory or file name.
func FlattenPath(p string) string {
	p = strings.Trim(path.Clean(strings.ReplaceAll(p, "\\", "/")), "/")
	if p == "." || p == "" {
		return "_"
	}
	return strings.ReplaceAll(p, "/", "_")
}
