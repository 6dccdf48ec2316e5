// Package fileutil provides shared file operation helpers.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ErrLimitExceeded is returned by ReadLimited when the file is larger than the limit.
var ErrLimitExceeded = errors.New("file exceeds size limit")

// TempContext holds state for an atomic file replacement.
type TempContext struct {
	// SrcInfo describes the file being replaced, nil if it does not exist yet.
	SrcInfo os.FileInfo
	TmpFile *os.File
	TmpName string
	Target  string
}

// NewTempContext stats the target and creates a sibling temp file for atomic writing.
// Caller must defer CleanupOnError.
func NewTempContext(target string) (*TempContext, error) {
	info, err := os.Stat(target)

	switch {
	case errors.Is(err, os.ErrNotExist):
		info = nil
	case err != nil:
		return nil, fmt.Errorf("getting file info for %q: %w", target, err)
	case !info.Mode().IsRegular():
		return nil, fmt.Errorf("%q is not a regular file", target)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	return &TempContext{
		SrcInfo: info,
		TmpFile: tmpFile,
		TmpName: tmpFile.Name(),
		Target:  target,
	}, nil
}

// Perm returns the permission bits of the replaced file, or fallback if there was none.
func (tc *TempContext) Perm(fallback os.FileMode) os.FileMode {
	if tc.SrcInfo == nil {
		return fallback
	}

	return tc.SrcInfo.Mode().Perm()
}

// Commit flushes the temp file, applies perm and renames it over the target.
func (tc *TempContext) Commit(perm os.FileMode) error {
	if err := tc.TmpFile.Sync(); err != nil {
		return fmt.Errorf("syncing temporary file: %w", err)
	}

	if err := tc.TmpFile.Chmod(perm); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := tc.TmpFile.Close(); err != nil {
		return fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Rename(tc.TmpName, tc.Target); err != nil {
		return fmt.Errorf("renaming output file: %w", err)
	}

	return nil
}

// CleanupOnError closes the temp file and removes it if the write failed.
func (tc *TempContext) CleanupOnError(errp *error) {
	tc.TmpFile.Close() //nolint:gosec // best-effort cleanup

	if *errp != nil {
		os.Remove(tc.TmpName) //nolint:gosec // best-effort cleanup
	}
}

// FinalizeOutput optionally sets the modification time of outPath to modTime.
func FinalizeOutput(outPath string, preserveTimestamps bool, modTime time.Time) error {
	if !preserveTimestamps {
		return nil
	}

	if err := os.Chtimes(outPath, modTime, modTime); err != nil {
		return fmt.Errorf("preserving timestamps: %w", err)
	}

	return nil
}

// ReadLimited reads the whole file at path, failing with ErrLimitExceeded
// once more than limit bytes have been read.
func ReadLimited(path string, limit uint64) ([]byte, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, int64(min(limit, 1<<62))+1)) //nolint:gosec // bounded above
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	if uint64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %q", ErrLimitExceeded, path)
	}

	return data, nil
}
