package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/typr-dist/internal/config"
	"github.com/oshokin/typr-dist/internal/logger"
	"github.com/oshokin/typr-dist/internal/service/installer"
	"github.com/oshokin/typr-dist/internal/version"
)

// manualDownloadHint follows every failure message.
const manualDownloadHint = "You can still download binaries manually from GitHub Releases."

var errUnknownLogLevel = errors.New("unknown log level")

var (
	// manifestPath is the package manifest with version and typr.repo.
	manifestPath string
	// installRoot receives the bin directory.
	installRoot string
	// releaseHost serves the release assets.
	releaseHost string
	// timeout bounds the download.
	timeout time.Duration
	// logLevel is the minimum level of printed records.
	logLevel string

	// rootCmd downloads the release archive for this host and installs the executable.
	rootCmd = &cobra.Command{
		Use:   "typr-install",
		Short: "Download and install the prebuilt typr executable for this platform",
		Long: "Resolve the release asset for the current OS and CPU, download it from the release host, " +
			"unpack it into <install-root>/bin and make the executable runnable.\n\n" +
			"Environment overrides: " + config.EnvRepository + " (repository slug), " +
			config.EnvVersion + " (release tag).",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return run(ctx, cmd.Flags().Changed("manifest"))
		},
	}
)

// Execute runs the typr-install CLI. Every failure is reported with the
// manual download hint and ends the process with status 1.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		failWithHint(logger.WithName(context.Background(), "typr-install"), err)
	}
}

// failWithHint is the single failure path of the installer.
func failWithHint(ctx context.Context, err error) {
	logger.Error(ctx, err.Error())
	logger.Error(ctx, manualDownloadHint)
	logger.Sync()
	os.Exit(1)
}

// run wires flags, manifest and environment into an installer run.
func run(ctx context.Context, manifestExplicit bool) error {
	level, ok := logger.ParseLogLevel(logLevel)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, logLevel)
	}

	logger.SetLevel(level)

	root := installRoot
	if root == "" {
		var err error

		if root, err = installer.DefaultInstallRoot(); err != nil {
			return err
		}
	}

	manifest, err := loadManifest(ctx, root, manifestExplicit)
	if err != nil {
		return err
	}

	provider, err := config.NewProvider(manifest, os.Getenv)
	if err != nil {
		return err
	}

	result, err := installer.Run(ctx, &installer.Options{
		Provider:    provider,
		InstallRoot: root,
		ReleaseHost: releaseHost,
		Timeout:     timeout,
	})
	if err != nil {
		return err
	}

	logger.DebugKV(ctx, "Installation finished",
		"platform", result.Platform.String(), "path", result.ExecutablePath)

	return nil
}

// loadManifest reads the manifest. A missing default manifest is tolerated so
// that TYPR_REPO and TYPR_VERSION alone are enough; an explicit one must exist.
func loadManifest(ctx context.Context, root string, explicit bool) (*config.Manifest, error) {
	path := manifestPath
	if path == "" {
		path = filepath.Join(root, config.DefaultManifestFilename)
	}

	manifest, err := config.Load(path)
	if err == nil {
		return manifest, nil
	}

	if !explicit && errors.Is(err, os.ErrNotExist) {
		logger.DebugKV(ctx, "No manifest found, relying on environment", "path", path)
		return &config.Manifest{}, nil
	}

	return nil, err
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "",
		"path to the package manifest (.json, .yaml or .toml); defaults to <install-root>/"+config.DefaultManifestFilename)
	rootCmd.Flags().StringVar(&installRoot, "install-root", "",
		"directory that receives bin/; defaults to the parent of the installer's directory")
	rootCmd.Flags().StringVar(&releaseHost, "release-host", installer.DefaultReleaseHost, "https host serving release assets")
	rootCmd.Flags().DurationVar(&timeout, "timeout", installer.DefaultTimeout, "overall download timeout")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}
