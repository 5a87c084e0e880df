package domain

import (
	"fmt"
	"regexp"
	"runtime"
	"sort"
	"strings"
)

const unknownDescription = "Unknown"

// DocumentFormat selects the encoding of reconstructed documents.
type DocumentFormat string

// Available document formats.
const (
	// DocumentFormatJSON writes indented JSON documents.
	DocumentFormatJSON DocumentFormat = "json"

	// DocumentFormatCBOR writes CBOR documents.
	DocumentFormatCBOR DocumentFormat = "cbor"
)

// IsValid returns true if the document format is recognised.
func (f DocumentFormat) IsValid() bool {
	switch f {
	case DocumentFormatJSON, DocumentFormatCBOR:
		return true
	default:
		return false
	}
}

// Extension returns the file extension for the format, including the dot.
func (f DocumentFormat) Extension() string {
	switch f {
	case DocumentFormatCBOR:
		return ".cbor"
	default:
		return ".json"
	}
}

// Description returns a human-readable description of the format.
func (f DocumentFormat) Description() string {
	switch f {
	case DocumentFormatJSON:
		return "JSON (indented)"
	case DocumentFormatCBOR:
		return "CBOR (RFC 8949)"
	default:
		return unknownDescription
	}
}

// ImageFormat selects the encoding of reconstructed images.
type ImageFormat string

// ImageFormatPNG writes PNG images. It is the only lossless format with alpha supported.
const ImageFormatPNG ImageFormat = "png"

// IsValid returns true if the image format is recognised.
func (f ImageFormat) IsValid() bool {
	return f == ImageFormatPNG
}

// Extension returns the file extension for the format, including the dot.
func (f ImageFormat) Extension() string {
	return ".png"
}

// OutputOptions controls how artifacts are encoded.
// It is passed explicitly to the extraction coordinator and the output writer.
type OutputOptions struct {
	// DocumentFormat is the encoding for documents.
	DocumentFormat DocumentFormat

	// ImageFormat is the encoding for images.
	ImageFormat ImageFormat
}

// MaterialSlots names the texture slots the material reconstructor reads.
type MaterialSlots struct {
	// Luma is the slot holding the Y plane of a split-channel texture.
	Luma string

	// ChromaBlue is the slot holding the Cb plane.
	ChromaBlue string

	// ChromaRed is the slot holding the Cr plane.
	ChromaRed string

	// Alpha is the optional alpha plane accompanying a split-channel texture.
	Alpha string

	// Main is the colour texture used when no split-channel planes are present.
	Main string

	// MainAlpha is the optional alpha-only texture merged into Main.
	MainAlpha string
}

// DefaultMaterialSlots returns the slot names used when none are configured.
func DefaultMaterialSlots() MaterialSlots {
	return MaterialSlots{
		Luma:       "_TexY",
		ChromaBlue: "_TexCb",
		ChromaRed:  "_TexCr",
		Alpha:      "_TexA",
		Main:       "_MainTex",
		MainAlpha:  "_AlphaTex",
	}
}

// Selection maps a logical name pattern to a destination folder.
type Selection struct {
	// Pattern matches logical names.
	Pattern *regexp.Regexp

	// Destination overrides the destination folder. Empty means the logical
	// name's own folder.
	Destination string
}

// DestinationFor returns the destination folder for a descriptor selected by s.
func (s Selection) DestinationFor(d ContentDescriptor) string {
	if s.Destination != "" {
		return strings.Trim(s.Destination, "/")
	}
	return d.Folder()
}

// RegionSettings configures the sync of one region.
type RegionSettings struct {
	// Name identifies the region.
	Name string

	// Manifest is the local manifest file path.
	Manifest string

	// ManifestURL, when set, is downloaded to Manifest before each sync.
	ManifestURL string

	// URLTemplate overrides the global download URL template.
	URLTemplate string

	// RawPatterns are added to the global raw patterns for this region.
	RawPatterns []string

	// Patterns maps a logical name pattern to a destination override ("" for none).
	Patterns map[string]string
}

// Selections compiles the region's patterns, ordered by pattern text so that
// the first matching selection is deterministic.
func (r RegionSettings) Selections() ([]Selection, error) {
	keys := make([]string, 0, len(r.Patterns))
	for k := range r.Patterns {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	selections := make([]Selection, 0, len(keys))
	for _, k := range keys {
		re, err := regexp.Compile(k)
		if err != nil {
			return nil, fmt.Errorf("%w: region %s pattern %q: %v", ErrInvalidInput, r.Name, k, err)
		}
		selections = append(selections, Selection{Pattern: re, Destination: r.Patterns[k]})
	}
	return selections, nil
}

// Settings holds the application configuration.
type Settings struct {
	// CacheDir holds downloaded content, one folder per region and group.
	CacheDir string

	// OutputDir receives reconstructed artifacts and raw copies.
	OutputDir string

	// DataDir holds the sync state database.
	DataDir string

	// Workers bounds both the download pool and the decode pool. 0 means one per CPU.
	Workers int

	// RateLimit caps downloads per second. 0 disables throttling.
	RateLimit float64

	// URLTemplate builds download URLs. It may contain {region}, {hash}, {shard} and {rest}.
	URLTemplate string

	// RawPatterns mark logical names that skip extraction.
	RawPatterns []string

	// CompleteGroups adds unchanged members of a changed group to the batch.
	CompleteGroups bool

	// Output controls artifact encoding.
	Output OutputOptions

	// Material names the material texture slots.
	Material MaterialSlots

	// Regions holds per-region settings keyed by region name.
	Regions map[string]RegionSettings
}

// DefaultSettings returns settings with defaults applied.
func DefaultSettings() Settings {
	return Settings{
		CacheDir:       "~/.assetsync/cache",
		OutputDir:      "output",
		DataDir:        "~/.assetsync/data",
		CompleteGroups: true,
		Output: OutputOptions{
			DocumentFormat: DocumentFormatJSON,
			ImageFormat:    ImageFormatPNG,
		},
		Material: DefaultMaterialSlots(),
		Regions:  make(map[string]RegionSettings),
	}
}

// WorkerCount returns the effective worker pool size.
func (s Settings) WorkerCount() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.NumCPU()
}

// Region returns the settings for a named region.
func (s Settings) Region(name string) (RegionSettings, error) {
	r, ok := s.Regions[name]
	if !ok {
		return RegionSettings{}, fmt.Errorf("region %s: %w", name, ErrNotFound)
	}
	r.Name = name
	return r, nil
}

// RegionNames returns the configured region names in sorted order.
func (s Settings) RegionNames() []string {
	names := make([]string, 0, len(s.Regions))
	for name := range s.Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the settings for values the pipeline cannot run with.
func (s Settings) Validate() error {
	if s.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidInput)
	}
	if s.RateLimit < 0 {
		return fmt.Errorf("%w: rate_limit must not be negative", ErrInvalidInput)
	}
	if !s.Output.DocumentFormat.IsValid() {
		return fmt.Errorf("%w: document_format %q", ErrUnsupportedType, s.Output.DocumentFormat)
	}
	if !s.Output.ImageFormat.IsValid() {
		return fmt.Errorf("%w: image_format %q", ErrUnsupportedType, s.Output.ImageFormat)
	}
	for _, p := range s.RawPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("%w: raw pattern %q: %v", ErrInvalidInput, p, err)
		}
	}
	for _, name := range s.RegionNames() {
		r, _ := s.Region(name)
		if r.Manifest == "" {
			return fmt.Errorf("%w: region %s has no manifest path", ErrInvalidInput, name)
		}
		if s.URLTemplate == "" && r.URLTemplate == "" {
			return fmt.Errorf("%w: region %s has no url template", ErrInvalidInput, name)
		}
		if _, err := r.Selections(); err != nil {
			return err
		}
		for _, p := range r.RawPatterns {
			if _, err := regexp.Compile(p); err != nil {
				return fmt.Errorf("%w: region %s raw pattern %q: %v", ErrInvalidInput, name, p, err)
			}
		}
	}
	return nil
}
