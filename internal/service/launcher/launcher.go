package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/oshokin/typr-dist/internal/logger"
	"github.com/oshokin/typr-dist/internal/platform"
)

var (
	// ErrBinaryNotFound is returned when the installed executable is missing.
	ErrBinaryNotFound = errors.New("binary not found, reinstall the package to download platform binary")
	// ErrSpawnFailed is returned when the operating system refuses to start the executable.
	ErrSpawnFailed = errors.New("failed to launch binary")

	//nolint:gochecknoglobals // Test seam for os.Executable().
	osExecutable = os.Executable

	//nolint:gochecknoglobals // Test seam for filepath.EvalSymlinks().
	evalSymlinks = filepath.EvalSymlinks
)

// Options are inputs accepted by the launcher entry point.
type Options struct {
	// Dir holds the installed executable. Defaults to the directory of the launcher binary.
	Dir string
	// GOOS selects the executable name. Defaults to runtime.GOOS.
	GOOS string
	// Args are passed to the child verbatim, without the launcher's own program name.
	Args []string
	// Stdin, Stdout and Stderr are handed to the child. Pass *os.File values
	// to let the child inherit the descriptors directly.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Termination describes how the child process ended.
type Termination struct {
	// ExitCode is the child's exit code when it exited normally.
	ExitCode int
	// Signal is the signal that killed the child, or nil.
	Signal os.Signal
}

// Run starts the installed executable and waits for it to finish.
// An error means the child never ran; a non-zero exit of the child is not an error.
func Run(ctx context.Context, opts *Options) (*Termination, error) {
	ctx = logger.WithName(ctx, "typr")

	path, err := resolveExecutable(opts)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithKV(ctx, "executable", path)

	logger.DebugKV(ctx, "Launching executable", "args", len(opts.Args))

	cmd := exec.Command(path, opts.Args...) //nolint:gosec // The path is our own installed executable.
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	// Subscribe before Start so a signal arriving during spawn is queued, not lost.
	signals := make(chan os.Signal, signalBufferSize)
	signal.Notify(signals, handledSignals...)

	defer signal.Stop(signals)

	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawnFailed, err)
	}

	done := make(chan struct{})
	defer close(done)

	go forwardSignals(ctx, cmd.Process, signals, done)

	waitErr := cmd.Wait()
	if cmd.ProcessState == nil {
		return nil, fmt.Errorf("wait for %s: %w", path, waitErr)
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		logger.DebugKV(ctx, "Child finished with an I/O error", "error", waitErr)
	}

	termination := terminationOf(cmd.ProcessState)
	logger.DebugKV(ctx, "Executable finished", "exit_code", termination.ExitCode, "signal", termination.Signal)

	return termination, nil
}

// ResolveExecutable returns the path of the installed executable for the given directory and OS.
func ResolveExecutable(dir, goos string) string {
	return filepath.Join(dir, platform.ExecutableName(goos))
}

// resolveExecutable locates the executable next to the launcher and checks that it exists.
func resolveExecutable(opts *Options) (string, error) {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	dir := opts.Dir

	var self string

	if dir == "" {
		var err error

		if self, err = ownPath(); err != nil {
			return "", err
		}

		dir = filepath.Dir(self)
	}

	path := ResolveExecutable(dir, goos)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, path)
	}

	// A launcher named like the executable would otherwise exec itself forever.
	if self != "" {
		if resolved, resolveErr := evalSymlinks(path); resolveErr == nil && resolved == self {
			return "", fmt.Errorf("%w: %s is the launcher itself", ErrBinaryNotFound, path)
		}
	}

	return path, nil
}

// ownPath returns the launcher's own executable with symlinks resolved,
// so that a launcher linked from elsewhere still finds its install directory.
func ownPath() (string, error) {
	self, err := osExecutable()
	if err != nil {
		return "", fmt.Errorf("locate launcher executable: %w", err)
	}

	resolved, err := evalSymlinks(self)
	if err != nil {
		return "", fmt.Errorf("resolve launcher executable: %w", err)
	}

	return resolved, nil
}

// forwardSignals relays termination requests to the child until done is closed.
func forwardSignals(ctx context.Context, process *os.Process, signals <-chan os.Signal, done <-chan struct{}) {
	for {
		select {
		case sig := <-signals:
			if !isForwarded(sig) {
				logger.DebugKV(ctx, "Signal left to the child's process group", "signal", SignalName(sig))
				continue
			}

			if err := process.Signal(sig); err != nil {
				logger.DebugKV(ctx, "Unable to forward signal", "signal", SignalName(sig), "error", err)
			}
		case <-done:
			return
		}
	}
}
