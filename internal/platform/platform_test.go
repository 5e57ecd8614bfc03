package platform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestResolveSupported covers every supported pair under both naming schemes.
func TestResolveSupported(t *testing.T) {
	t.Parallel()

	cases := []struct {
		rawOS, rawArch string
		want           Key
	}{
		{"win32", "x64", Key{OS: OSWindows, Arch: ArchAMD64}},
		{"windows", "arm64", Key{OS: OSWindows, Arch: ArchARM64}},
		{"darwin", "arm64", Key{OS: OSDarwin, Arch: ArchARM64}},
		{"darwin", "x64", Key{OS: OSDarwin, Arch: ArchAMD64}},
		{"linux", "amd64", Key{OS: OSLinux, Arch: ArchAMD64}},
		{"linux", "arm64", Key{OS: OSLinux, Arch: ArchARM64}},
	}

	for _, tc := range cases {
		got, err := Resolve(tc.rawOS, tc.rawArch, DefaultTables())
		require.NoError(t, err, "%s/%s", tc.rawOS, tc.rawArch)
		require.Equal(t, tc.want, got)
	}
}

// TestResolveUnsupported names the unmapped raw values in the error.
func TestResolveUnsupported(t *testing.T) {
	t.Parallel()

	for _, pair := range [][2]string{
		{"freebsd", "amd64"},
		{"linux", "ia32"},
		{"aix", "ppc64"},
		{"", ""},
	} {
		_, err := Resolve(pair[0], pair[1], DefaultTables())
		require.ErrorIs(t, err, ErrUnsupportedPlatform)
		require.Contains(t, err.Error(), pair[0]+"/"+pair[1])
	}
}

// TestAssetNameIsDeterministic checks the typr_<version>_<os>_<arch>.zip layout for all targets.
func TestAssetNameIsDeterministic(t *testing.T) {
	t.Parallel()

	for _, osName := range []string{OSWindows, OSDarwin, OSLinux} {
		for _, arch := range []string{ArchAMD64, ArchARM64} {
			key := Key{OS: osName, Arch: arch}
			want := "typr_v1.2.3_" + osName + "_" + arch + ".zip"

			require.Equal(t, want, AssetName("v1.2.3", key))
			require.Equal(t, AssetName("v1.2.3", key), AssetName("v1.2.3", key))
		}
	}
}

// TestExecutableName checks the Windows extension rule.
func TestExecutableName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "typr.exe", ExecutableName("windows"))
	require.Equal(t, "typr.exe", ExecutableName("win32"))
	require.Equal(t, "typr", ExecutableName("linux"))
	require.Equal(t, "typr", ExecutableName("darwin"))
}

// TestTablesClone ensures clones do not share maps with the original.
func TestTablesClone(t *testing.T) {
	t.Parallel()

	original := DefaultTables()
	clone := original.Clone()
	clone.OS["freebsd"] = OSLinux

	_, found := original.OS["freebsd"]
	require.False(t, found)
}
