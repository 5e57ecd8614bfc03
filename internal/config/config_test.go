package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/typr-dist/internal/platform"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

// TestLoadFormats reads the same manifest from JSON, YAML and TOML files.
func TestLoadFormats(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"package.json": `{"name": "typr", "version": "1.2.3", "typr": {"repo": "acme/typr"}, "scripts": {"postinstall": "x"}}`,
		"typr.yaml":    "version: 1.2.3\ntypr:\n  repo: acme/typr\n",
		"typr.toml":    "version = \"1.2.3\"\n\n[typr]\nrepo = \"acme/typr\"\n",
	}

	for name, contents := range files {
		manifest, err := Load(writeFile(t, name, contents))
		require.NoError(t, err, name)
		require.Equal(t, "1.2.3", manifest.Version, name)
		require.Equal(t, "acme/typr", manifest.Typr.Repository, name)
	}
}

// TestLoadErrors covers a missing file, a broken file and an unknown extension.
func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "broken.toml", "version = "))
	require.Error(t, err)

	_, err = Load(writeFile(t, "manifest.ini", "version=1"))
	require.ErrorIs(t, err, errUnknownManifestFormat)
}

// TestProviderPrefersEnvironment checks that overrides win over manifest values.
func TestProviderPrefersEnvironment(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		EnvRepository: "acme/typr",
		EnvVersion:    "v9.9.9",
	}

	provider, err := NewProvider(&Manifest{
		Version: "1.0.0",
		Typr:    Distribution{Repository: "someone/else"},
	}, func(key string) string { return env[key] })
	require.NoError(t, err)

	require.Equal(t, "acme/typr", provider.Repository())
	require.Equal(t, "v9.9.9", provider.Version())
	require.Equal(t, platform.DefaultTables(), provider.OSArchMap())
}

// TestProviderFallsBackToManifest checks defaults when no override is set.
func TestProviderFallsBackToManifest(t *testing.T) {
	t.Parallel()

	provider, err := NewProvider(&Manifest{
		Version: "1.0.0",
		Typr:    Distribution{Repository: "someone/typr"},
	}, func(string) string { return "" })
	require.NoError(t, err)

	require.Equal(t, "someone/typr", provider.Repository())
	require.Equal(t, "v1.0.0", provider.Version())

	empty, err := NewProvider(&Manifest{}, func(string) string { return "" })
	require.NoError(t, err)
	require.Empty(t, empty.Repository())
	require.Empty(t, empty.Version())

	_, err = NewProvider(nil, nil)
	require.ErrorIs(t, err, errManifestIsNotSet)
}

// TestStaticProvider returns fixed values and default tables.
func TestStaticProvider(t *testing.T) {
	t.Parallel()

	s := Static{Repo: "acme/typr", Tag: "v1.2.3"}
	require.Equal(t, "acme/typr", s.Repository())
	require.Equal(t, "v1.2.3", s.Version())
	require.Equal(t, platform.DefaultTables(), s.OSArchMap())
}

// TestStaticProviderCopiesTables hands out tables the caller may extend.
func TestStaticProviderCopiesTables(t *testing.T) {
	t.Parallel()

	s := Static{Repo: "acme/typr", Tag: "v1.2.3", Tables: platform.DefaultTables()}

	tables := s.OSArchMap()
	tables.OS["freebsd"] = "freebsd"

	require.NotContains(t, s.Tables.OS, "freebsd")
	require.Equal(t, platform.DefaultTables(), s.OSArchMap())
}
