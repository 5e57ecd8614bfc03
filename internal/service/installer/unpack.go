package installer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/typr-dist/internal/logger"
	"github.com/oshokin/typr-dist/internal/platform"
)

const (
	// DefaultDirMode is used for the install directory and nested archive directories.
	DefaultDirMode os.FileMode = 0o755

	// DefaultFileMode is applied to the installed executable on non-Windows hosts.
	DefaultFileMode os.FileMode = 0o755

	// fallbackEntryMode is used for archive entries that carry no permission bits.
	fallbackEntryMode os.FileMode = 0o644

	// maxEntryBytes is the upper bound on a single extracted file (500 MB).
	maxEntryBytes = 500 << 20
)

// extractArchive unpacks every entry of the in-memory zip archive into dir,
// overwriting files of the same name. The top-level entry named executableName
// is written with go-update so that a running older binary can be replaced.
func extractArchive(ctx context.Context, archive []byte, dir, executableName string) error {
	if err := os.MkdirAll(dir, DefaultDirMode); err != nil {
		return fmt.Errorf("create install directory: %w", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidArchive, err)
	}

	for _, file := range reader.File {
		if err = extractEntry(ctx, file, dir, executableName); err != nil {
			return fmt.Errorf("extract %s: %w", file.Name, err)
		}
	}

	return nil
}

// extractEntry writes a single archive entry below dir.
func extractEntry(ctx context.Context, file *zip.File, dir, executableName string) error {
	name := filepath.FromSlash(file.Name)
	if !filepath.IsLocal(name) {
		return errUnsafeArchiveEntry
	}

	target := filepath.Join(dir, name)
	mode := file.Mode()

	switch {
	case mode.IsDir():
		return os.MkdirAll(target, DefaultDirMode)
	case !mode.IsRegular():
		logger.WarnKV(ctx, "Skipping non-regular archive entry", "entry", file.Name, "mode", mode.String())
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), DefaultDirMode); err != nil {
		return err
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = fallbackEntryMode
	}

	contents, err := file.Open()
	if err != nil {
		return err
	}

	defer func() {
		_ = contents.Close()
	}()

	limited := &limitedReader{reader: contents, remaining: maxEntryBytes}

	if filepath.Clean(name) == executableName {
		return applyExecutable(limited, target, perm)
	}

	return writeFile(limited, target, perm)
}

// writeFile creates or truncates target and copies the entry into it.
func writeFile(source io.Reader, target string, perm os.FileMode) error {
	output, err := os.OpenFile(filepath.Clean(target), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err = io.Copy(output, source); err != nil {
		_ = output.Close()
		return err
	}

	return output.Close()
}

// applyExecutable swaps the executable in place with go-update, which needs an existing target.
func applyExecutable(source io.Reader, target string, perm os.FileMode) error {
	if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
		if err = writeFile(bytes.NewReader(nil), target, perm); err != nil {
			return err
		}
	}

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: perm,
	}

	if err := goupdate.Apply(source, options); err != nil {
		return fmt.Errorf("apply executable: %w", err)
	}

	return nil
}

// verifyExecutable checks that the executable is present as a regular file.
func verifyExecutable(path string) error {
	info, err := os.Stat(path)

	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrArchiveMissingExecutable, filepath.Base(path))
	case err != nil:
		return fmt.Errorf("stat executable: %w", err)
	case !info.Mode().IsRegular():
		return fmt.Errorf("%w: %s is not a regular file", ErrArchiveMissingExecutable, filepath.Base(path))
	}

	return nil
}

// fixPermissions marks the executable as runnable on non-Windows targets.
// It reports whether the permission bits were touched.
func fixPermissions(key platform.Key, path string) (bool, error) {
	if key.IsWindows() {
		return false, nil
	}

	if err := os.Chmod(path, DefaultFileMode); err != nil {
		return false, fmt.Errorf("make executable: %w", err)
	}

	return true, nil
}

// limitedReader fails instead of silently truncating once the limit is exceeded.
type limitedReader struct {
	reader    io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, errEntryTooLarge
	}

	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}

	n, err := l.reader.Read(p)
	l.remaining -= int64(n)

	if l.remaining < 0 {
		return n, errEntryTooLarge
	}

	return n, err
}
