package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore is a file-based implementation of driven.SettingsStore using TOML.
type SettingsStore struct {
	mu       sync.Mutex
	filePath string
}

// fileConfig mirrors the TOML layout. Pointer fields distinguish "unset" from
// an explicit zero so defaults survive partial files.
type fileConfig struct {
	CacheDir       string                  `toml:"cache_dir,omitempty"`
	OutputDir      string                  `toml:"output_dir,omitempty"`
	DataDir        string                  `toml:"data_dir,omitempty"`
	Workers        int                     `toml:"workers,omitempty"`
	RateLimit      float64                 `toml:"rate_limit,omitempty"`
	URLTemplate    string                  `toml:"url_template,omitempty"`
	DocumentFormat string                  `toml:"document_format,omitempty"`
	ImageFormat    string                  `toml:"image_format,omitempty"`
	CompleteGroups *bool                   `toml:"complete_groups,omitempty"`
	RawPatterns    []string                `toml:"raw_patterns,omitempty"`
	Material       *materialConfig         `toml:"material,omitempty"`
	Regions        map[string]regionConfig `toml:"regions,omitempty"`
}

type materialConfig struct {
	Luma       string `toml:"luma,omitempty"`
	ChromaBlue string `toml:"chroma_blue,omitempty"`
	ChromaRed  string `toml:"chroma_red,omitempty"`
	Alpha      string `toml:"alpha,omitempty"`
	Main       string `toml:"main,omitempty"`
	MainAlpha  string `toml:"main_alpha,omitempty"`
}

type regionConfig struct {
	Manifest    string            `toml:"manifest"`
	ManifestURL string            `toml:"manifest_url,omitempty"`
	URLTemplate string            `toml:"url_template,omitempty"`
	RawPatterns []string          `toml:"raw_patterns,omitempty"`
	Patterns    map[string]string `toml:"patterns,omitempty"`
}

// NewSettingsStore creates a TOML settings store.
// If path is empty, defaults to ~/.assetsync/config.toml.
func NewSettingsStore(path string) (*SettingsStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".assetsync", "config.toml")
	}
	return &SettingsStore{filePath: path}, nil
}

// Load reads the configuration file, applying defaults for missing keys.
// A missing file yields the defaults.
func (s *SettingsStore) Load() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	if err != nil && !os.IsNotExist(err) {
		return settings, err
	}
	if err == nil {
		var cfg fileConfig
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return settings, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, s.filePath, err)
		}
		apply(&settings, cfg)
	}

	if err := expandPaths(&settings); err != nil {
		return settings, err
	}
	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

// Save persists settings to the TOML file.
func (s *SettingsStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(toFile(settings))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return err
	}
	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the configuration file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

func apply(s *domain.Settings, cfg fileConfig) {
	if cfg.CacheDir != "" {
		s.CacheDir = cfg.CacheDir
	}
	if cfg.OutputDir != "" {
		s.OutputDir = cfg.OutputDir
	}
	if cfg.DataDir != "" {
		s.DataDir = cfg.DataDir
	}
	s.Workers = cfg.Workers
	s.RateLimit = cfg.RateLimit
	s.URLTemplate = cfg.URLTemplate
	s.RawPatterns = cfg.RawPatterns
	if cfg.DocumentFormat != "" {
		s.Output.DocumentFormat = domain.DocumentFormat(cfg.DocumentFormat)
	}
	if cfg.ImageFormat != "" {
		s.Output.ImageFormat = domain.ImageFormat(cfg.ImageFormat)
	}
	if cfg.CompleteGroups != nil {
		s.CompleteGroups = *cfg.CompleteGroups
	}

	if m := cfg.Material; m != nil {
		setIf(&s.Material.Luma, m.Luma)
		setIf(&s.Material.ChromaBlue, m.ChromaBlue)
		setIf(&s.Material.ChromaRed, m.ChromaRed)
		setIf(&s.Material.Alpha, m.Alpha)
		setIf(&s.Material.Main, m.Main)
		setIf(&s.Material.MainAlpha, m.MainAlpha)
	}

	for name, r := range cfg.Regions {
		s.Regions[name] = domain.RegionSettings{
			Name:        name,
			Manifest:    r.Manifest,
			ManifestURL: r.ManifestURL,
			URLTemplate: r.URLTemplate,
			RawPatterns: r.RawPatterns,
			Patterns:    r.Patterns,
		}
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func toFile(s domain.Settings) fileConfig {
	complete := s.CompleteGroups
	cfg := fileConfig{
		CacheDir:       s.CacheDir,
		OutputDir:      s.OutputDir,
		DataDir:        s.DataDir,
		Workers:        s.Workers,
		RateLimit:      s.RateLimit,
		URLTemplate:    s.URLTemplate,
		DocumentFormat: string(s.Output.DocumentFormat),
		ImageFormat:    string(s.Output.ImageFormat),
		CompleteGroups: &complete,
		RawPatterns:    s.RawPatterns,
		Material: &materialConfig{
			Luma:       s.Material.Luma,
			ChromaBlue: s.Material.ChromaBlue,
			ChromaRed:  s.Material.ChromaRed,
			Alpha:      s.Material.Alpha,
			Main:       s.Material.Main,
			MainAlpha:  s.Material.MainAlpha,
		},
	}
	if len(s.Regions) > 0 {
		cfg.Regions = make(map[string]regionConfig, len(s.Regions))
		for name, r := range s.Regions {
			cfg.Regions[name] = regionConfig{
				Manifest:    r.Manifest,
				ManifestURL: r.ManifestURL,
				URLTemplate: r.URLTemplate,
				RawPatterns: r.RawPatterns,
				Patterns:    r.Patterns,
			}
		}
	}
	return cfg
}

// expandPaths resolves a leading "~" in every configured path.
func expandPaths(s *domain.Settings) error {
	var err error
	for _, p := range []*string{&s.CacheDir, &s.OutputDir, &s.DataDir} {
		if *p, err = ExpandHome(*p); err != nil {
			return err
		}
	}
	for name, r := range s.Regions {
		if r.Manifest, err = ExpandHome(r.Manifest); err != nil {
			return err
		}
		s.Regions[name] = r
	}
	return nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
