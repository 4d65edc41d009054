// Package fileutil provides shared file operation helpers: name splitting,
// advisory locks, temporary outputs and atomic relocation.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TempContext holds state for an atomic file write operation.
type TempContext struct {
	TmpFile *os.File
	TmpName string
}

// NewTempContext creates a hidden temp file next to outPath for atomic writing.
// Caller must defer CleanupOnError.
func NewTempContext(outPath string) (*TempContext, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(outPath), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	return &TempContext{
		TmpFile: tmpFile,
		TmpName: tmpFile.Name(),
	}, nil
}

// CleanupOnError closes the temp file and removes it if the write failed.
func (tc *TempContext) CleanupOnError(errp *error) {
	tc.TmpFile.Close() //nolint:gosec,errcheck // best-effort cleanup

	if *errp != nil {
		os.Remove(tc.TmpName) //nolint:gosec,errcheck // best-effort cleanup
	}
}

// Commit closes the temp file and renames it onto outPath.
func (tc *TempContext) Commit(outPath string) error {
	if err := tc.TmpFile.Close(); err != nil {
		return fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Rename(tc.TmpName, outPath); err != nil {
		return fmt.Errorf("renaming output file: %w", err)
	}

	return nil
}

// CreateTemp creates an empty file in dir named <name>-<random><suffix>.
// Path separators in name are replaced so a header-supplied name cannot escape dir.
func CreateTemp(dir, name, suffix string) (*os.File, error) {
	replacer := strings.NewReplacer("/", "_", `\`, "_", string(filepath.Separator), "_")

	name = replacer.Replace(name)
	suffix = replacer.Replace(suffix)

	if name == "" {
		name = "file"
	}

	file, err := os.CreateTemp(dir, name+"-*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	return file, nil
}

// CopyFile copies src onto dst atomically. An existing dst is replaced.
func CopyFile(src, dst string) (err error) {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("opening %q: %w", src, err)
	}
	defer in.Close()

	tc, err := NewTempContext(dst)
	if err != nil {
		return err
	}

	defer tc.CleanupOnError(&err)

	if _, err = io.Copy(tc.TmpFile, in); err != nil {
		return fmt.Errorf("copying %q to %q: %w", src, dst, err)
	}

	const ownerReadWrite = 0o600

	if err = os.Chmod(tc.TmpName, ownerReadWrite); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	return tc.Commit(dst)
}

// RemoveIfExists removes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if path == "" {
		return nil
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %q: %w", path, err)
	}

	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

// FinalizeOutput optionally preserves timestamps and returns the output file size.
func FinalizeOutput(outPath string, preserveTimestamps bool, modTime time.Time) (int64, error) {
	if preserveTimestamps {
		if err := os.Chtimes(outPath, modTime, modTime); err != nil {
			return 0, fmt.Errorf("preserving timestamps: %w", err)
		}
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("stat output %q: %w", outPath, err)
	}

	return outInfo.Size(), nil
}
