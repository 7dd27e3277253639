package records

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/formvault/internal/csvline"
	"github.com/PolarWolf314/formvault/internal/vault"
)

// MigrateResult summarizes a schema migration.
type MigrateResult struct {
	// Header is the header written to the file.
	Header []string

	// Rows is the number of data rows remapped to the new header.
	Rows int

	// Preserved is the number of undecryptable lines copied through unchanged.
	Preserved int

	// Created reports whether the file did not exist and was created header-only.
	Created bool
}

// TargetHeader returns fieldNames with TimestampColumn as the single final column.
func TargetHeader(fieldNames []string) []string {
	header := make([]string, 0, len(fieldNames)+1)
	for _, name := range fieldNames {
		if name == TimestampColumn {
			continue
		}
		header = append(header, name)
	}
	return append(header, TimestampColumn)
}

// Migrate realigns the record file at path to newFieldNames.
//
// Values are carried over by column name: columns missing from the old
// header are empty for existing rows and columns dropped from the schema are
// discarded. Lines that fail to decrypt are copied through unchanged rather
// than lost. A missing file is created with just the new header.
//
// Migrate refuses to rewrite a file whose header cannot be decrypted, since
// no row could be remapped.
func (s *Store) Migrate(path string, key vault.Key, newFieldNames []string) (*MigrateResult, error) {
	newHeader := TargetHeader(newFieldNames)
	result := &MigrateResult{Header: newHeader}

	unlock := s.locks.Lock(path)
	defer unlock()

	encHeader, err := vault.EncryptLine(key, csvline.EncodeRow(newHeader))
	if err != nil {
		return nil, fmt.Errorf("encrypting header: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating record directory: %w", err)
		}
		err := writeAtomic(path, 0600, func(w *bufio.Writer) error {
			_, err := w.WriteString(encHeader + "\n")
			return err
		})
		if err != nil {
			return nil, err
		}
		result.Created = true
		s.log.Debugf("Created %s with header %v", path, newHeader)
		return result, nil
	} else if err != nil {
		return nil, fmt.Errorf("checking record file %s: %w", path, err)
	}

	var (
		oldIndex map[string]int
		oldWidth int
	)

	err = writeAtomic(path, filePerm(path), func(w *bufio.Writer) error {
		if _, err := w.WriteString(encHeader + "\n"); err != nil {
			return err
		}

		return eachLine(path, func(n int, raw string) error {
			res := vault.DecryptLine(key, raw)

			if n == 1 {
				if !res.OK() {
					return fmt.Errorf("migrating %s: header: %w", path, res.Err)
				}
				oldHeader := csvline.DecodeLine(res.Plaintext)
				oldWidth = len(oldHeader)
				oldIndex = make(map[string]int, len(oldHeader))
				for i, name := range oldHeader {
					oldIndex[name] = i
				}
				return nil
			}

			if !res.OK() {
				s.log.Warnf("Preserving undecryptable line %d of %s during migration: %v", n, path, res.Err)
				result.Preserved++
				_, err := w.WriteString(raw + "\n")
				return err
			}

			old := csvline.DecodeLine(res.Plaintext)
			row := make([]string, len(newHeader))
			for i, name := range newHeader {
				if j, ok := oldIndex[name]; ok && j < len(old) {
					row[i] = old[j]
				}
			}

			enc, err := vault.EncryptLine(key, csvline.EncodeRow(row))
			if err != nil {
				return fmt.Errorf("encrypting row %d: %w", n-1, err)
			}
			result.Rows++
			_, err = w.WriteString(enc + "\n")
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Debugf("Migrated %s from %d to %d columns (%d rows, %d preserved)", path, oldWidth, len(newHeader), result.Rows, result.Preserved)

	return result, nil
}
