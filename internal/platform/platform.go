package platform

import (
	"errors"
	"fmt"
	"maps"
)

// Canonical operating system and architecture identifiers used in asset names.
const (
	OSWindows = "windows"
	OSDarwin  = "darwin"
	OSLinux   = "linux"

	ArchAMD64 = "amd64"
	ArchARM64 = "arm64"
)

const (
	// ExecutableBaseName is the name of the installed program without extension.
	ExecutableBaseName = "typr"

	// windowsExecutableExtension is appended to executables on Windows hosts.
	windowsExecutableExtension = ".exe"
)

// ErrUnsupportedPlatform is returned when the host has no prebuilt release.
var ErrUnsupportedPlatform = errors.New("unsupported platform/arch")

// Key identifies one prebuilt release target.
type Key struct {
	// OS is one of OSWindows, OSDarwin or OSLinux.
	OS string
	// Arch is one of ArchAMD64 or ArchARM64.
	Arch string
}

// String renders the key as "os/arch".
func (k Key) String() string {
	return k.OS + "/" + k.Arch
}

// IsWindows reports whether the key targets Windows.
func (k Key) IsWindows() bool {
	return k.OS == OSWindows
}

// Tables holds the raw-to-canonical lookup tables.
type Tables struct {
	// OS maps raw OS identifiers (e.g. "win32", "windows") to canonical ones.
	OS map[string]string
	// Arch maps raw CPU identifiers (e.g. "x64", "amd64") to canonical ones.
	Arch map[string]string
}

// DefaultTables accepts both Node-style and Go-style identifiers.
func DefaultTables() Tables {
	return Tables{
		OS: map[string]string{
			"win32":   OSWindows,
			"windows": OSWindows,
			"darwin":  OSDarwin,
			"linux":   OSLinux,
		},
		Arch: map[string]string{
			"x64":   ArchAMD64,
			"amd64": ArchAMD64,
			"arm64": ArchARM64,
		},
	}
}

// Clone returns a deep copy so callers can extend the tables safely.
func (t Tables) Clone() Tables {
	return Tables{
		OS:   maps.Clone(t.OS),
		Arch: maps.Clone(t.Arch),
	}
}

// Resolve maps raw identifiers through the tables.
// No fallback is attempted: an unknown value on either side is an error naming both raw values.
func Resolve(rawOS, rawArch string, tables Tables) (Key, error) {
	osName, osFound := tables.OS[rawOS]
	arch, archFound := tables.Arch[rawArch]

	if !osFound || !archFound || osName == "" || arch == "" {
		return Key{}, fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, rawOS, rawArch)
	}

	return Key{OS: osName, Arch: arch}, nil
}

// AssetName returns the release archive name for the version and target.
func AssetName(version string, key Key) string {
	return fmt.Sprintf("%s_%s_%s_%s.zip", ExecutableBaseName, version, key.OS, key.Arch)
}

// ExecutableName returns the installed executable file name for a raw or canonical OS identifier.
func ExecutableName(goos string) string {
	if goos == OSWindows || goos == "win32" {
		return ExecutableBaseName + windowsExecutableExtension
	}

	return ExecutableBaseName
}
