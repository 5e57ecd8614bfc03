package installer

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/oshokin/typr-dist/internal/config"
	"github.com/oshokin/typr-dist/internal/logger"
	"github.com/oshokin/typr-dist/internal/platform"
	"github.com/oshokin/typr-dist/internal/service/common"
)

// BinDirName is the directory below the install root that holds the executable.
const BinDirName = "bin"

var (
	//nolint:gochecknoglobals // Test seam for os.Executable().
	osExecutable = os.Executable

	//nolint:gochecknoglobals // Test seam for filepath.EvalSymlinks().
	evalSymlinks = filepath.EvalSymlinks
)

// Options are inputs accepted by the installer entry point.
type Options struct {
	// Provider supplies the repository, version and platform tables. Required.
	Provider config.Provider
	// InstallRoot receives the bin directory. Defaults to DefaultInstallRoot().
	InstallRoot string
	// ReleaseHost is the scheme and host serving releases. Defaults to DefaultReleaseHost.
	ReleaseHost string
	// HTTPClient is used for downloads. Defaults to a client with Timeout.
	HTTPClient *http.Client
	// Timeout bounds the whole download when HTTPClient is nil. Defaults to DefaultTimeout.
	Timeout time.Duration
	// GOOS and GOARCH are the raw host identifiers. They default to the runtime values.
	GOOS   string
	GOARCH string
}

// Coordinates locate one release asset.
type Coordinates struct {
	Repository string
	Version    string
	AssetName  string
	URL        string
}

// Result describes a successful installation.
type Result struct {
	// Platform is the resolved release target.
	Platform platform.Key
	// Coordinates are the release coordinates that were downloaded.
	Coordinates Coordinates
	// ExecutablePath is the installed executable.
	ExecutablePath string
	// PermissionsFixed is true when the executable bits were set (never on Windows).
	PermissionsFixed bool
}

// runner holds the state of a single installation.
type runner struct {
	key         platform.Key
	coordinates Coordinates
	installDir  string
	fetcher     *fetcher
}

// Run installs the executable for the current host and returns where it was put.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "typr-install")

	in, err := newRunner(opts)
	if err != nil {
		return nil, err
	}

	return in.run(ctx)
}

// newRunner resolves the platform first so that unsupported hosts never touch the network.
func newRunner(opts *Options) (*runner, error) {
	if opts == nil || opts.Provider == nil {
		return nil, fmt.Errorf("installer options: %w", config.ErrProviderIsNotSet)
	}

	goos, goarch := opts.GOOS, opts.GOARCH
	if goos == "" {
		goos = runtime.GOOS
	}

	if goarch == "" {
		goarch = runtime.GOARCH
	}

	key, err := platform.Resolve(goos, goarch, opts.Provider.OSArchMap())
	if err != nil {
		return nil, err
	}

	host := opts.ReleaseHost
	if host == "" {
		host = DefaultReleaseHost
	}

	coordinates, err := ResolveCoordinates(opts.Provider, key, host)
	if err != nil {
		return nil, err
	}

	installRoot := opts.InstallRoot
	if installRoot == "" {
		if installRoot, err = DefaultInstallRoot(); err != nil {
			return nil, err
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &runner{
		key:         key,
		coordinates: coordinates,
		installDir:  filepath.Join(installRoot, BinDirName),
		fetcher:     newFetcher(opts.HTTPClient, timeout),
	}, nil
}

// ResolveCoordinates builds the release coordinates for key from the provider.
func ResolveCoordinates(provider config.Provider, key platform.Key, host string) (Coordinates, error) {
	repository := strings.Trim(provider.Repository(), "/")
	if repository == "" {
		return Coordinates{}, ErrMissingRepository
	}

	version := provider.Version()
	if version == "" {
		return Coordinates{}, ErrMissingVersion
	}

	assetName := platform.AssetName(version, key)
	assetURL := fmt.Sprintf("%s/%s/releases/download/%s/%s",
		strings.TrimRight(host, "/"), repository, version, assetName)

	return Coordinates{
		Repository: repository,
		Version:    version,
		AssetName:  assetName,
		URL:        assetURL,
	}, nil
}

// DefaultInstallRoot is the parent of the directory holding the running executable.
func DefaultInstallRoot() (string, error) {
	self, err := osExecutable()
	if err != nil {
		return "", fmt.Errorf("locate installer executable: %w", err)
	}

	if resolved, resolveErr := evalSymlinks(self); resolveErr == nil {
		self = resolved
	}

	return filepath.Dir(filepath.Dir(self)), nil
}

// run executes the pipeline:
// 1) Download the archive into memory.
// 2) Extract it into the install directory.
// 3) Verify the executable is present.
// 4) Make it executable outside Windows.
func (r *runner) run(ctx context.Context) (*Result, error) {
	if !semver.IsValid(r.coordinates.Version) {
		logger.WarnKV(ctx, "Release version is not a semantic version tag", "version", r.coordinates.Version)
	}

	logger.Infof(ctx, "Downloading %s...", r.coordinates.AssetName)
	logger.DebugKV(ctx, "Release coordinates",
		"repository", r.coordinates.Repository, "version", r.coordinates.Version,
		"platform", r.key.String(), "url", r.coordinates.URL)

	archive, err := r.fetcher.fetch(ctx, r.coordinates.URL)
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Downloaded release archive", "bytes", len(archive))

	executableName := platform.ExecutableName(r.key.OS)
	executablePath := filepath.Join(r.installDir, executableName)

	r.warnIfRunning(ctx, executableName)

	if err = extractArchive(ctx, archive, r.installDir, executableName); err != nil {
		return nil, err
	}

	if err = verifyExecutable(executablePath); err != nil {
		return nil, err
	}

	fixed, err := fixPermissions(r.key, executablePath)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Installed successfully.")
	logger.DebugKV(ctx, "Installed executable", "path", executablePath, "permissions_fixed", fixed)

	return &Result{
		Platform:         r.key,
		Coordinates:      r.coordinates,
		ExecutablePath:   executablePath,
		PermissionsFixed: fixed,
	}, nil
}

// warnIfRunning logs when an older copy of the executable is still running.
func (r *runner) warnIfRunning(ctx context.Context, executableName string) {
	pids, err := common.RunningProcesses(executableName)
	if err != nil {
		logger.DebugKV(ctx, "Unable to list running processes", "error", err)
		return
	}

	if len(pids) > 0 {
		logger.WarnKV(ctx, "The executable is running and will be replaced in place",
			"executable", executableName, "pids", pids)
	}
}
