package records

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/formvault/internal/csvline"
	kerrors "github.com/PolarWolf314/formvault/internal/errors"
	logger "github.com/PolarWolf314/formvault/internal/logging"
	"github.com/PolarWolf314/formvault/internal/vault"
)

// TimestampColumn is the reserved final header column.
const TimestampColumn = "_submitted_at"

// Store reads and writes record files.
type Store struct {
	log   logger.Logger
	locks *Locks
}

// Options configures a Store.
type Options struct {
	// Logger receives per-line decrypt failures and rewrite progress.
	Logger logger.Logger

	// Locks is shared between stores that write the same files.
	// A nil value gives the store a private registry.
	Locks *Locks
}

// NewStore returns a Store configured by opts.
func NewStore(opts Options) *Store {
	locks := opts.Locks
	if locks == nil {
		locks = NewLocks()
	}
	return &Store{log: opts.Logger, locks: locks}
}

// Row is a decoded data row with its 1-based index among data lines.
type Row struct {
	Index  int
	Fields []string
}

// LineIssue describes a line that could not be decrypted.
// Line is the 1-based physical line number, header included.
type LineIssue struct {
	Line int
	Raw  string
	Err  error
}

// Table is the decoded content of a record file.
type Table struct {
	Header []string
	Rows   []Row

	// Issues lists lines that were skipped because they failed to decrypt.
	Issues []LineIssue

	// Legacy counts lines that were stored as plaintext.
	Legacy int
}

// Records returns the field slices of every decoded data row.
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Fields
	}
	return out
}

// Append encrypts row and appends it to the record file at path.
// A missing or empty file is first given an encrypted header line.
func (s *Store) Append(path string, key vault.Key, header, row []string) error {
	if len(header) > 0 && len(row) != len(header) {
		return fmt.Errorf("%w: row has %d columns, header has %d", kerrors.ErrColumnMismatch, len(row), len(header))
	}

	unlock := s.locks.Lock(path)
	defer unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating record directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("opening record file %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("checking record file %s: %w", path, err)
	}

	var buf strings.Builder
	if info.Size() == 0 {
		if len(header) == 0 {
			return fmt.Errorf("%w: record file %s has no header", kerrors.ErrColumnMismatch, path)
		}
		enc, err := vault.EncryptLine(key, csvline.EncodeRow(header))
		if err != nil {
			return fmt.Errorf("encrypting header: %w", err)
		}
		buf.WriteString(enc)
		buf.WriteByte('\n')
		s.log.Debugf("Creating record file %s with %d columns", path, len(header))
	}

	enc, err := vault.EncryptLine(key, csvline.EncodeRow(row))
	if err != nil {
		return fmt.Errorf("encrypting row: %w", err)
	}
	buf.WriteString(enc)
	buf.WriteByte('\n')

	// One write keeps concurrent appenders from interleaving partial lines.
	if _, err := io.WriteString(f, buf.String()); err != nil {
		return fmt.Errorf("appending to record file %s: %w", path, err)
	}

	return nil
}

// ScanAll reads, decrypts and decodes the record file at path.
// A missing file yields an empty Table and no error.
func (s *Store) ScanAll(path string, key vault.Key) (*Table, error) {
	table := &Table{}

	err := eachLine(path, func(n int, raw string) error {
		res := vault.DecryptLine(key, raw)
		if !res.OK() {
			s.log.Warnf("Skipping line %d of %s: %v", n, path, res.Err)
			table.Issues = append(table.Issues, LineIssue{Line: n, Raw: raw, Err: res.Err})
			return nil
		}
		if res.Outcome == vault.Legacy {
			table.Legacy++
		}

		fields := csvline.DecodeLine(res.Plaintext)
		if n == 1 {
			table.Header = fields
			return nil
		}
		table.Rows = append(table.Rows, Row{Index: n - 1, Fields: fields})
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return table, nil
	}
	if err != nil {
		return nil, err
	}

	return table, nil
}

// ReadHeader returns the decoded header of the record file at path.
// A missing or empty file yields a nil header and no error.
func (s *Store) ReadHeader(path string, key vault.Key) ([]string, error) {
	first, err := firstLine(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if first == "" {
		return nil, nil
	}

	res := vault.DecryptLine(key, first)
	if !res.OK() {
		return nil, fmt.Errorf("reading header of %s: %w", path, res.Err)
	}
	return csvline.DecodeLine(res.Plaintext), nil
}

// DeleteRow removes the data row at index (1-based, header excluded).
// It reports false when the file does not exist or index is below 1.
// An index past the last row copies the file unchanged and reports true.
func (s *Store) DeleteRow(path string, index int) (bool, error) {
	if index <= 0 {
		return false, nil
	}

	unlock := s.locks.Lock(path)
	defer unlock()

	in, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("opening record file %s: %w", path, err)
	}
	defer in.Close()

	deleted := false
	err = writeAtomic(path, filePerm(path), func(w *bufio.Writer) error {
		r := bufio.NewReader(in)
		for n := 1; ; n++ {
			line, err := r.ReadString('\n')
			if line != "" {
				switch {
				case n > 1 && n-1 == index:
					deleted = true
				default:
					// The header is always copied.
					if _, werr := w.WriteString(line); werr != nil {
						return werr
					}
				}
			}
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading record file %s: %w", path, err)
			}
		}
	})
	if err != nil {
		return false, err
	}

	if deleted {
		s.log.Debugf("Deleted row %d from %s", index, path)
	} else {
		s.log.Debugf("Row %d not present in %s, nothing deleted", index, path)
	}

	return true, nil
}

// eachLine calls fn for every line of path without its line terminator.
// n is the 1-based physical line number.
func eachLine(path string, fn func(n int, raw string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for n := 1; ; n++ {
		line, err := r.ReadString('\n')
		if line != "" {
			if ferr := fn(n, strings.TrimRight(line, "\r\n")); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading record file %s: %w", path, err)
		}
	}
}

// firstLine returns the first line of path without its terminator.
func firstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
