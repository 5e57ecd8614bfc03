package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/typr-dist/internal/config"
	"github.com/oshokin/typr-dist/internal/platform"
	"github.com/oshokin/typr-dist/internal/service/installer"
)

const executeHelperEnv = "TYPR_INSTALL_EXECUTE_HELPER"

// TestLoadManifestDefaultPath reads package.json from the install root.
//
//nolint:paralleltest // Uses package-level flag variables.
func TestLoadManifestDefaultPath(t *testing.T) {
	root := t.TempDir()
	manifestPath = ""

	require.NoError(t, os.WriteFile(filepath.Join(root, config.DefaultManifestFilename),
		[]byte(`{"version": "2.0.0", "typr": {"repo": "acme/typr"}}`), 0o600))

	manifest, err := loadManifest(context.Background(), root, false)
	require.NoError(t, err)
	require.Equal(t, "2.0.0", manifest.Version)
	require.Equal(t, "acme/typr", manifest.Typr.Repository)
}

// TestLoadManifestMissing tolerates only a missing default manifest.
//
//nolint:paralleltest // Uses package-level flag variables.
func TestLoadManifestMissing(t *testing.T) {
	root := t.TempDir()

	manifestPath = ""

	manifest, err := loadManifest(context.Background(), root, false)
	require.NoError(t, err)
	require.Equal(t, &config.Manifest{}, manifest)

	manifestPath = filepath.Join(root, "typr.toml")
	t.Cleanup(func() { manifestPath = "" })

	_, err = loadManifest(context.Background(), root, true)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestRunRejectsUnknownLogLevel fails before touching the network.
//
//nolint:paralleltest // Uses package-level flag variables.
func TestRunRejectsUnknownLogLevel(t *testing.T) {
	prev := logLevel
	logLevel = "verbose"

	t.Cleanup(func() { logLevel = prev })

	err := run(context.Background(), false)
	require.ErrorIs(t, err, errUnknownLogLevel)
}

// TestExecuteHelper is not a real test; it is re-executed by TestExecuteFailure
// to run the CLI against the given install root.
//
//nolint:paralleltest // Helper process.
func TestExecuteHelper(t *testing.T) {
	root := os.Getenv(executeHelperEnv)
	if root == "" {
		t.Skip("helper process only")
	}

	rootCmd.SetArgs([]string{"--install-root", root})
	Execute()
}

// TestExecuteFailure reports the error, then the manual download hint, and exits with status 1.
func TestExecuteFailure(t *testing.T) {
	t.Parallel()

	expected := installer.ErrMissingRepository.Error()
	if _, err := platform.Resolve(runtime.GOOS, runtime.GOARCH, platform.DefaultTables()); err != nil {
		expected = platform.ErrUnsupportedPlatform.Error()
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestExecuteHelper$") //nolint:gosec // Test binary re-exec.

	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, config.EnvRepository+"=") && !strings.HasPrefix(kv, config.EnvVersion+"=") {
			cmd.Env = append(cmd.Env, kv)
		}
	}

	cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", executeHelperEnv, t.TempDir()))

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected a non-zero exit, got %v", err)
	require.Equal(t, 1, exitErr.ExitCode())

	output := stderr.String()
	errorAt := strings.Index(output, expected)
	hintAt := strings.Index(output, manualDownloadHint)

	require.GreaterOrEqual(t, errorAt, 0, output)
	require.Greater(t, hintAt, errorAt, output)
	require.NotContains(t, stdout.String(), manualDownloadHint)
}
