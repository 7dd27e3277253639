package records

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// SweepTemp removes rewrite temp files under root older than minAge.
// It returns the removed paths. A missing root removes nothing.
func (s *Store) SweepTemp(root string, minAge time.Duration) ([]string, error) {
	if _, err := os.Stat(root); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(root), "**/*"+TempSuffix, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("listing temp files in %s: %w", root, err)
	}

	cutoff := time.Now().Add(-minAge)

	var removed []string
	for _, m := range matches {
		path := filepath.Join(root, filepath.FromSlash(m))

		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			s.log.Debugf("Keeping recent temp file %s", path)
			continue
		}

		if err := os.Remove(path); err != nil {
			s.log.Warnf("Failed to remove temp file %s: %v", path, err)
			continue
		}
		removed = append(removed, path)
	}

	if len(removed) > 0 {
		s.log.Infof("Removed %d orphaned temp files under %s", len(removed), root)
	}

	return removed, nil
}
