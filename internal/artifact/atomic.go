// Package artifact provides atomic replace-on-disk semantics for index
// and model files. Builders write new artifacts under temporary names and
// rename them into place, so a serving process reading the old files is
// never exposed to a partially written replacement.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes data to path atomically: the bytes go to a temporary
// file in the same directory, which is then renamed over the target.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp artifact: %w", err)
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting artifact permissions: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing artifact %s: %w", path, err)
	}
	return nil
}

// Replace renames src over dst. It is used by builders that must produce
// a complete file elsewhere first (e.g. a rebuilt SQLite database).
func Replace(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("replacing artifact %s: %w", dst, err)
	}
	return nil
}
