// Package config loads the package manifest and exposes the installation
// coordinates (repository slug, version tag, platform tables) through the
// Provider interface, applying the TYPR_REPO and TYPR_VERSION environment
// overrides on top of the manifest defaults.
package config
