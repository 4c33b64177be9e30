package job

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// WriteAtomic writes a file through a temporary file in the same directory
// and renames it into place, so a failed write leaves no partial output.
// It returns the number of bytes written.
func WriteAtomic(path string, fill func(*os.File) error) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if err := fill(tmp); err != nil {
		cleanup()
		return 0, err
	}
	// CreateTemp uses 0600; outputs get regular file permissions.
	if err := tmp.Chmod(0644); err != nil {
		cleanup()
		return 0, err
	}
	info, err := tmp.Stat()
	if err != nil {
		cleanup()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, errors.Wrap(err, "rename temp file")
	}
	return info.Size(), nil
}
