// Package atomicio provides the temp-file-then-rename write pattern used
// for every snapshot the spine writes (state, data, RNG), grounded on the
// teacher's checkpoint store (internal/store/fs_store.go: SaveCheckpoint).
package atomicio

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile atomically writes data to path: it writes to a sibling
// "<path>.tmp" file first, then renames it into place, so a crash or
// error mid-write never leaves a corrupt file at path.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("atomicio: create directory %s: %w", dir, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("atomicio: write temp file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("atomicio: rename %s to %s: %w", tmp, path, err)
	}
	return nil
}
