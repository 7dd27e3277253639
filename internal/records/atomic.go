package records

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/formvault/internal/errors"
)

// TempSuffix is the suffix of in-flight rewrite files.
const TempSuffix = ".tmp"

// writeAtomic writes a replacement for path through fill and renames it over path.
// The original is untouched unless the rename succeeds.
func writeAtomic(path string, perm os.FileMode, fill func(w *bufio.Writer) error) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*"+TempSuffix)
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", kerrors.ErrAtomicWriteFailed, err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(tmp)
	if err := fill(w); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing %s: %v", kerrors.ErrAtomicWriteFailed, tmpPath, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: chmod %s: %v", kerrors.ErrAtomicWriteFailed, tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: syncing %s: %v", kerrors.ErrAtomicWriteFailed, tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", kerrors.ErrAtomicWriteFailed, tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: renaming %s: %v", kerrors.ErrAtomicWriteFailed, tmpPath, err)
	}

	// The data is already in place; a failed directory sync only weakens
	// durability of the rename.
	_ = syncDir(dir)

	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	err = d.Sync()
	if cerr := d.Close(); err == nil {
		err = cerr
	}
	return err
}

// filePerm returns the permission bits of path, or 0600 when it cannot be read.
func filePerm(path string) os.FileMode {
	info, err := os.Stat(path)
	if err != nil {
		return 0600
	}
	return info.Mode().Perm()
}
