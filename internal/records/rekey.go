package records

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/PolarWolf314/formvault/internal/vault"

	"github.com/bmatcuk/doublestar/v4"
)

// RecordFileName is the name of a form's record file inside its directory.
const RecordFileName = "data.csv"

// FileRekey describes what the cascade did to one record file.
type FileRekey struct {
	Path string

	// Skipped is true when the file's first line was not encrypted and the
	// file was left untouched.
	Skipped bool

	// Reencrypted counts lines moved from the old key to the new key.
	Reencrypted int

	// AlreadyCurrent counts lines that already decrypted under the new key.
	AlreadyCurrent int

	// Preserved counts lines that decrypted under neither key and were copied verbatim.
	Preserved int

	// Legacy counts plaintext lines copied verbatim.
	Legacy int
}

// FileFailure records a record file the cascade could not rewrite.
// The file itself is unchanged.
type FileFailure struct {
	Path string
	Err  error
}

// RekeyReport is the outcome of RekeyAllForms.
type RekeyReport struct {
	Files  []FileRekey
	Failed []FileFailure
}

// Rekeyed returns the paths of files that were rewritten under the new key.
func (r *RekeyReport) Rekeyed() []string {
	var paths []string
	for _, f := range r.Files {
		if !f.Skipped {
			paths = append(paths, f.Path)
		}
	}
	return paths
}

// Err joins the failures of the cascade, or returns nil when every file succeeded.
func (r *RekeyReport) Err() error {
	var errs []error
	for _, f := range r.Failed {
		errs = append(errs, fmt.Errorf("rekeying %s: %w", f.Path, f.Err))
	}
	return errors.Join(errs...)
}

// FindRecordFiles returns every record file directly below formsDir's form
// directories, sorted. A missing formsDir yields no files.
func FindRecordFiles(formsDir string) ([]string, error) {
	if _, err := os.Stat(formsDir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(formsDir), "*/"+RecordFileName, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("listing record files in %s: %w", formsDir, err)
	}
	sort.Strings(matches)

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(formsDir, filepath.FromSlash(m))
	}
	return paths, nil
}

// RekeyAllForms re-encrypts every record file of username under formsDir
// from the key derived from oldSecret to the key derived from newSecret.
//
// Each file is rewritten atomically on its own; the cascade as a whole is
// not. A failure on one file is recorded and the cascade moves on, so the
// returned report must be checked with Err. Running the cascade again after
// a partial failure is safe: lines already under the new key are kept.
// ctx is checked between files.
func (s *Store) RekeyAllForms(ctx context.Context, formsDir, username, oldSecret, newSecret string) (*RekeyReport, error) {
	oldKey := vault.DeriveKey(username, oldSecret)
	newKey := vault.DeriveKey(username, newSecret)
	defer oldKey.Wipe()
	defer newKey.Wipe()

	paths, err := FindRecordFiles(formsDir)
	if err != nil {
		return nil, err
	}

	s.log.Infof("Rekeying %d record files for %s", len(paths), username)

	report := &RekeyReport{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		fr, err := s.RekeyFile(path, oldKey, newKey)
		if err != nil {
			s.log.Warnf("Failed to rekey %s: %v", path, err)
			report.Failed = append(report.Failed, FileFailure{Path: path, Err: err})
			continue
		}
		report.Files = append(report.Files, *fr)
	}

	return report, nil
}

// RekeyFile moves one record file from oldKey to newKey.
// A file whose first line is not encrypted is skipped untouched.
func (s *Store) RekeyFile(path string, oldKey, newKey vault.Key) (*FileRekey, error) {
	unlock := s.locks.Lock(path)
	defer unlock()

	fr := &FileRekey{Path: path}

	first, err := firstLine(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !vault.IsEncrypted(first) {
		fr.Skipped = true
		s.log.Debugf("Skipping %s: not encrypted", path)
		return fr, nil
	}

	err = writeAtomic(path, filePerm(path), func(w *bufio.Writer) error {
		return eachLine(path, func(n int, raw string) error {
			out, err := s.rekeyLine(raw, oldKey, newKey, fr)
			if err != nil {
				return fmt.Errorf("line %d: %w", n, err)
			}
			_, err = w.WriteString(out + "\n")
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Debugf("Rekeyed %s: %d re-encrypted, %d current, %d preserved, %d legacy",
		path, fr.Reencrypted, fr.AlreadyCurrent, fr.Preserved, fr.Legacy)

	return fr, nil
}

func (s *Store) rekeyLine(raw string, oldKey, newKey vault.Key, fr *FileRekey) (string, error) {
	if !vault.IsEncrypted(raw) {
		fr.Legacy++
		return raw, nil
	}
	if oldKey == newKey {
		fr.AlreadyCurrent++
		return raw, nil
	}

	// CBC has no MAC, so the wrong key occasionally yields valid padding.
	// Prefer whichever key produces text, and never encrypt a line that
	// already belongs to the new key.
	oldRes := vault.DecryptLine(oldKey, raw)
	if oldRes.Outcome == vault.Decrypted && utf8.ValidString(oldRes.Plaintext) {
		return s.reencrypt(oldRes.Plaintext, newKey, fr)
	}

	newRes := vault.DecryptLine(newKey, raw)
	if newRes.Outcome == vault.Decrypted && utf8.ValidString(newRes.Plaintext) {
		fr.AlreadyCurrent++
		return raw, nil
	}

	if oldRes.Outcome == vault.Decrypted {
		return s.reencrypt(oldRes.Plaintext, newKey, fr)
	}

	fr.Preserved++
	return raw, nil
}

func (s *Store) reencrypt(plaintext string, newKey vault.Key, fr *FileRekey) (string, error) {
	enc, err := vault.EncryptLine(newKey, plaintext)
	if err != nil {
		return "", err
	}
	fr.Reencrypted++
	return enc, nil
}
