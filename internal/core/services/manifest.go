package services

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/assetsync/internal/core/domain"
)

const manifestSeparator = "|"

// ManifestOptions configures how manifest lines become content descriptors.
type ManifestOptions struct {
	// Region is substituted for {region} in the URL template.
	Region string

	// URLTemplate builds download URLs from {region}, {hash}, {shard} and {rest}.
	URLTemplate string

	// RawPatterns mark logical names that bypass extraction.
	RawPatterns []*regexp.Regexp
}

// ManifestStore parses manifests and computes diffs between them.
// Manifests it returns are read-only and safe to share across goroutines.
type ManifestStore struct {
	opts ManifestOptions
}

// NewManifestStore creates a manifest store for one region.
func NewManifestStore(opts ManifestOptions) *ManifestStore {
	return &ManifestStore{opts: opts}
}

// Load parses the manifest file at path.
func (s *ManifestStore) Load(path string) (*domain.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	return s.Parse(f)
}

// Parse reads newline delimited "<content_hash>|<logical_name>[|<size>]" records.
// Whitespace around fields is trimmed and blank lines are ignored.
func (s *ManifestStore) Parse(r io.Reader) (*domain.Manifest, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var descriptors []domain.ContentDescriptor
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		d, err := s.parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		descriptors = append(descriptors, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return domain.NewManifest(s.opts.Region, descriptors), nil
}

func (s *ManifestStore) parseLine(line string) (domain.ContentDescriptor, error) {
	fields := strings.Split(line, manifestSeparator)
	if len(fields) < 2 {
		return domain.ContentDescriptor{}, fmt.Errorf("%w: missing %q separator", domain.ErrMalformedManifest, manifestSeparator)
	}
	if len(fields) > 3 {
		return domain.ContentDescriptor{}, fmt.Errorf("%w: too many fields", domain.ErrMalformedManifest)
	}

	hash := strings.TrimSpace(fields[0])
	name := strings.TrimSpace(fields[1])
	if hash == "" || name == "" {
		return domain.ContentDescriptor{}, fmt.Errorf("%w: empty hash or logical name", domain.ErrMalformedManifest)
	}

	var size int64
	if len(fields) == 3 {
		raw := strings.TrimSpace(fields[2])
		if raw != "" {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || n < 0 {
				return domain.ContentDescriptor{}, fmt.Errorf("%w: invalid size %q", domain.ErrMalformedManifest, raw)
			}
			size = n
		}
	}

	return domain.ContentDescriptor{
		LogicalName: name,
		ContentHash: hash,
		URL:         s.URL(hash),
		Size:        size,
		Raw:         s.isRaw(name),
	}, nil
}

// URL builds the download URL for a content hash. The hash is split into a
// two character shard prefix and the remaining characters.
func (s *ManifestStore) URL(hash string) string {
	shard, rest := hash, ""
	if len(hash) > 2 {
		shard, rest = hash[:2], hash[2:]
	}
	return strings.NewReplacer(
		"{region}", s.opts.Region,
		"{hash}", hash,
		"{shard}", shard,
		"{rest}", rest,
	).Replace(s.opts.URLTemplate)
}

func (s *ManifestStore) isRaw(name string) bool {
	for _, re := range s.opts.RawPatterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// FilterByPattern returns the entries whose logical name matches pattern, in manifest order.
func (s *ManifestStore) FilterByPattern(m *domain.Manifest, pattern *regexp.Regexp) []domain.ContentDescriptor {
	var out []domain.ContentDescriptor
	for _, d := range m.Entries() {
		if pattern.MatchString(d.LogicalName) {
			out = append(out, d)
		}
	}
	return out
}

// Diff returns the entries of m that are absent from baseline or whose content
// hash differs, sorted by logical name. A nil baseline yields every entry.
func (s *ManifestStore) Diff(m, baseline *domain.Manifest) []domain.ContentDescriptor {
	return diffEntries(m.Entries(), baseline)
}

// DiffByPattern filters m by pattern and diffs the result against baseline.
// Filtering comes first so a changed entry that does not match never surfaces.
func (s *ManifestStore) DiffByPattern(m, baseline *domain.Manifest, pattern *regexp.Regexp) []domain.ContentDescriptor {
	return diffEntries(s.FilterByPattern(m, pattern), baseline)
}

// Removed returns the logical names present in baseline but absent from m, sorted.
func (s *ManifestStore) Removed(m, baseline *domain.Manifest) []string {
	var out []string
	for _, d := range baseline.Entries() {
		if _, ok := m.Get(d.LogicalName); !ok {
			out = append(out, d.LogicalName)
		}
	}
	sort.Strings(out)
	return out
}

func diffEntries(entries []domain.ContentDescriptor, baseline *domain.Manifest) []domain.ContentDescriptor {
	var out []domain.ContentDescriptor
	for _, d := range entries {
		if old, ok := baseline.Get(d.LogicalName); ok && old.ContentHash == d.ContentHash {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LogicalName < out[j].LogicalName })
	return out
}
