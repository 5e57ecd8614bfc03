package installer

import (
	"errors"
	"fmt"

	"github.com/oshokin/typr-dist/internal/platform"
)

var (
	// ErrUnsupportedPlatform is returned when the host OS or CPU has no prebuilt release.
	ErrUnsupportedPlatform = platform.ErrUnsupportedPlatform
	// ErrMissingRepository is returned when neither TYPR_REPO nor the manifest names a repository.
	ErrMissingRepository = errors.New("missing repository slug (set TYPR_REPO or typr.repo in the manifest)")
	// ErrMissingVersion is returned when neither TYPR_VERSION nor the manifest names a version.
	ErrMissingVersion = errors.New("missing release version (set TYPR_VERSION or version in the manifest)")
	// ErrTooManyRedirects is returned when the release host keeps redirecting.
	ErrTooManyRedirects = errors.New("too many redirects while downloading release asset")
	// ErrDownloadFailed matches every *DownloadError.
	ErrDownloadFailed = errors.New("download failed")
	// ErrArchiveMissingExecutable is returned when the archive unpacked fine but had no executable.
	ErrArchiveMissingExecutable = errors.New("installed archive did not contain the executable")

	errInsecureURL        = errors.New("refusing non-https URL")
	errUnsafeArchiveEntry = errors.New("archive entry escapes the install directory")
	errEntryTooLarge      = errors.New("archive entry exceeds the size limit")
	errInvalidArchive     = errors.New("invalid release archive")
)

// DownloadError describes a failed request to the release host.
// StatusCode is zero when the request failed at the transport level.
type DownloadError struct {
	StatusCode int
	URL        string
	Err        error
}

// Error formats the status code or the transport error together with the URL.
func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("download failed for %s: %v", e.URL, e.Err)
	}

	return fmt.Sprintf("download failed (%d) for %s", e.StatusCode, e.URL)
}

// Unwrap returns the transport error, if any.
func (e *DownloadError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrDownloadFailed) hold for every DownloadError.
func (e *DownloadError) Is(target error) bool {
	return target == ErrDownloadFailed
}
