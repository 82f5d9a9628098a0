// Package filex contains filesystem helpers for the file-backed snapshot.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory that will hold path, if missing.
func EnsureParentDir(path string) (string, error) {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// ErrDirSync is returned when the data was renamed into place but the
// directory entry could not be fsynced. The file already holds the new content.
var ErrDirSync = errors.New("sync dir")

// test seams
var (
	rename  = os.Rename
	syncDir = func(dir string) error {
		d, err := os.Open(dir)
		if err != nil {
			return err
		}
		defer d.Close()
		return d.Sync()
	}
)

// WriteFileAtomic replaces path with data so that a reader sees either the
// old content or the new content, never a mix. The data goes to a temporary
// file in the same directory, is fsynced, renamed over path, and finally
// the directory entry is fsynced. On any error other than ErrDirSync path
// is left untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir, err := EnsureParentDir(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err = rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	if serr := syncDir(dir); serr != nil {
		return fmt.Errorf("%w: %v", ErrDirSync, serr)
	}
	return nil
}
