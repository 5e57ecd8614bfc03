// Package installer downloads and installs the prebuilt typr executable.
//
// It resolves the host platform to a release target, builds the release asset
// URL from the configured repository and version, downloads the archive into
// memory following at most five redirects, extracts it into the install
// directory and makes the executable runnable on non-Windows hosts.
package installer
