package launcher

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRunBinaryNotFound fails without spawning when nothing is installed.
func TestRunBinaryNotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	termination, err := Run(context.Background(), &Options{Dir: dir})
	require.ErrorIs(t, err, ErrBinaryNotFound)
	require.Nil(t, termination)
	require.Contains(t, err.Error(), ResolveExecutable(dir, runtime.GOOS))
}

// TestRunBinaryIsDirectory treats a directory in place of the executable as missing.
func TestRunBinaryIsDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(ResolveExecutable(dir, runtime.GOOS), 0o755))

	_, err := Run(context.Background(), &Options{Dir: dir})
	require.ErrorIs(t, err, ErrBinaryNotFound)
}

// TestResolveExecutable applies the Windows naming rule.
func TestResolveExecutable(t *testing.T) {
	t.Parallel()

	require.Equal(t, filepath.Join("bin", "typr.exe"), ResolveExecutable("bin", "windows"))
	require.Equal(t, filepath.Join("bin", "typr"), ResolveExecutable("bin", "linux"))
}

// TestRunRefusesToLaunchItself guards against a launcher installed under the executable's name.
//
//nolint:paralleltest // Replaces package-level seams.
func TestRunRefusesToLaunchItself(t *testing.T) {
	prevExecutable, prevEval := osExecutable, evalSymlinks

	t.Cleanup(func() {
		osExecutable, evalSymlinks = prevExecutable, prevEval
	})

	dir := t.TempDir()
	self := ResolveExecutable(dir, runtime.GOOS)
	require.NoError(t, os.WriteFile(self, []byte("launcher"), 0o755))

	osExecutable = func() (string, error) { return self, nil }
	evalSymlinks = func(path string) (string, error) { return path, nil }

	_, err := Run(context.Background(), &Options{})
	require.ErrorIs(t, err, ErrBinaryNotFound)
	require.Contains(t, err.Error(), "launcher itself")
}
