package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/typr-dist/internal/platform"
)

// Manifest holds the package metadata fields consumed as installation defaults.
type Manifest struct {
	// Version is the package version without the "v" prefix, e.g. "1.2.3".
	Version string `json:"version" yaml:"version" toml:"version"`
	// Typr holds the nested distribution settings.
	Typr Distribution `json:"typr" yaml:"typr" toml:"typr"`
}

// Distribution is the nested "typr" section of the manifest.
type Distribution struct {
	// Repository is the release repository slug, e.g. "acme/typr".
	Repository string `json:"repo" yaml:"repo" toml:"repo"`
}

const (
	// DefaultManifestFilename is the manifest looked up in the install root.
	DefaultManifestFilename = "package.json"

	// EnvRepository overrides the manifest repository slug.
	EnvRepository = "TYPR_REPO"

	// EnvVersion overrides the release version tag.
	EnvVersion = "TYPR_VERSION"

	// versionTagPrefix is prepended to the manifest version to form a release tag.
	versionTagPrefix = "v"
)

var (
	// ErrProviderIsNotSet is returned by consumers that received a nil Provider.
	ErrProviderIsNotSet = errors.New("configuration provider is not set")
	// errManifestIsNotSet is returned when a nil manifest is provided.
	errManifestIsNotSet = errors.New("manifest is not set")
	// errUnknownManifestFormat is returned for manifest files with an unsupported extension.
	errUnknownManifestFormat = errors.New("unknown manifest format")
)

// Load reads a manifest from the provided path. The format is picked from the file
// extension: JSON (package.json), YAML or TOML.
func Load(path string) (*Manifest, error) {
	if path == "" {
		path = DefaultManifestFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err = toml.Unmarshal(contents, &manifest); err != nil {
			return nil, fmt.Errorf("unmarshal TOML manifest: %w", err)
		}
	case ".json":
		if err = json.Unmarshal(contents, &manifest); err != nil {
			return nil, fmt.Errorf("unmarshal JSON manifest: %w", err)
		}
	case ".yaml", ".yml", "":
		if err = yaml.Unmarshal(contents, &manifest); err != nil {
			return nil, fmt.Errorf("unmarshal YAML manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("%s: %w", ext, errUnknownManifestFormat)
	}

	return &manifest, nil
}

// Provider supplies the installation coordinates.
// Implementations may read the environment, a manifest or fixed values in tests.
type Provider interface {
	// Repository returns the release repository slug or "" when none is known.
	Repository() string
	// Version returns the release version tag or "" when none is known.
	Version() string
	// OSArchMap returns the raw-to-canonical platform lookup tables.
	OSArchMap() platform.Tables
}

// envProvider resolves coordinates from environment overrides with manifest fallbacks.
type envProvider struct {
	manifest *Manifest
	getenv   func(string) string
}

// NewProvider returns a Provider that consults getenv first and the manifest second.
// A nil getenv means os.Getenv.
func NewProvider(manifest *Manifest, getenv func(string) string) (Provider, error) {
	if manifest == nil {
		return nil, errManifestIsNotSet
	}

	if getenv == nil {
		getenv = os.Getenv
	}

	return &envProvider{
		manifest: manifest,
		getenv:   getenv,
	}, nil
}

// Repository returns TYPR_REPO or the manifest typr.repo field.
func (p *envProvider) Repository() string {
	if repo := strings.TrimSpace(p.getenv(EnvRepository)); repo != "" {
		return repo
	}

	return strings.TrimSpace(p.manifest.Typr.Repository)
}

// Version returns TYPR_VERSION or "v" followed by the manifest version.
func (p *envProvider) Version() string {
	if version := strings.TrimSpace(p.getenv(EnvVersion)); version != "" {
		return version
	}

	version := strings.TrimSpace(p.manifest.Version)
	if version == "" {
		return ""
	}

	return versionTagPrefix + version
}

// OSArchMap returns the default lookup tables.
func (p *envProvider) OSArchMap() platform.Tables {
	return platform.DefaultTables()
}

// Static is a fixed Provider, handy for tests and embedding.
type Static struct {
	Repo   string
	Tag    string
	Tables platform.Tables
}

// Repository returns the fixed repository slug.
func (s Static) Repository() string {
	return s.Repo
}

// Version returns the fixed version tag.
func (s Static) Version() string {
	return s.Tag
}

// OSArchMap returns a copy of the fixed tables or the defaults when none were set.
func (s Static) OSArchMap() platform.Tables {
	if s.Tables.OS == nil && s.Tables.Arch == nil {
		return platform.DefaultTables()
	}

	return s.Tables.Clone()
}
