package records

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepTemp(t *testing.T) {
	s := newTestStore(t)
	root := t.TempDir()

	stale := filepath.Join(root, "jane", "forms", "contact", RecordFileName+".111"+TempSuffix)
	fresh := filepath.Join(root, "jane", "forms", "survey", RecordFileName+".222"+TempSuffix)
	keep := filepath.Join(root, "jane", "forms", "contact", RecordFileName)

	for _, p := range []string{stale, fresh, keep} {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0700))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0600))
	}
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))
	require.NoError(t, os.Chtimes(keep, old, old))

	removed, err := s.SweepTemp(root, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{stale}, removed)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.FileExists(t, keep)
}

func TestSweepTempMissingRoot(t *testing.T) {
	s := newTestStore(t)
	removed, err := s.SweepTemp(filepath.Join(t.TempDir(), "missing"), 0)
	require.NoError(t, err)
	assert.Empty(t, removed)
}
