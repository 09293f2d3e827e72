// Package fileutil provides filesystem helpers: atomic writes and
// size-limited reads.
package fileutil

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// MaxFileSize caps how much of a single config file we will read (4MB).
// Chat transcripts are read through bufio scanners and are not subject
// to this limit.
const MaxFileSize = 4 * 1024 * 1024

// ErrFileTooLarge indicates a file exceeded MaxFileSize.
var ErrFileTooLarge = errors.Newf("file exceeds maximum size of %d bytes", MaxFileSize)

// ReadFileCapped reads a file, rejecting anything larger than MaxFileSize.
func ReadFileCapped(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

// AtomicWriteFile writes data to path via a temp file and rename, so an
// interrupted write leaves any existing file intact. The parent directory
// is created if missing.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating parent directory")
	}

	// Temp file must live in the same directory for the rename to be atomic.
	tmp, err := os.CreateTemp(dir, ".convey-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	tmpName := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}
	return nil
}

// AtomicWriteJSON writes v as 2-space-indented JSON with a trailing
// newline, atomically, with 0644 permissions.
func AtomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling JSON")
	}
	data = append(data, '\n')
	return AtomicWriteFile(path, data, 0o644)
}

// CopyFile copies src to dst preserving the source's permission bits.
// Parent directories of dst are created as needed.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "opening source file")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Wrap(err, "stat source file")
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "reading source file")
	}

	return AtomicWriteFile(dst, data, info.Mode().Perm())
}
