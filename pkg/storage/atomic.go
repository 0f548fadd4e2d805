package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// TempFilePrefix marks the scratch files of in-flight writes. The watcher
// and key validation both skip names carrying it.
const TempFilePrefix = "whisper-tmp-"

// writeFileAtomic replaces the blob at filename without ever exposing a
// partial write: data goes to a scratch file in the same directory, is
// synced, and then renamed over the target. Readers see the old blob or the
// new one, nothing in between.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)

	// Same directory as the target, so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to stage write for %s: %w", filename, err)
	}
	defer os.Remove(tmp.Name()) // no-op once the rename succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to stage write for %s: %w", filename, err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush staged write for %s: %w", filename, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to finish staged write for %s: %w", filename, err)
	}

	// CreateTemp uses 0600; the blob should carry the caller's mode.
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("failed to set mode on staged write for %s: %w", filename, err)
	}

	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("failed to swap in %s: %w", filename, err)
	}

	return nil
}
