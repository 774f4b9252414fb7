package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic streams into a sibling temp file and renames it over path
// once fill succeeds, so readers never observe a half-written file. A temp
// file that cannot be cleaned up after a failure is reported alongside the
// original error.
func WriteFileAtomic(path string, fill func(f *os.File) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*"+PartialSuffix)
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}

	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			if rerr := os.Remove(tmpName); rerr != nil && !os.IsNotExist(rerr) {
				err = errors.Join(err, fmt.Errorf("remove temp %s: %w", tmpName, rerr))
			}
		}
	}()

	if err = fill(tmp); err != nil {
		_ = tmp.Close()
		return err
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}

	return nil
}
