package transaction

import (
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// writeFileAtomic replaces path with data through a temporary file in the same
// directory, so readers see either the old or the new content and never a
// partial write. The original file mode is kept.
func writeFileAtomic(path string, data []byte) (err error) {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Errorf("stat: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".patchrc-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Chmod(info.Mode().Perm()); err != nil {
		return errors.Errorf("setting mode: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}
