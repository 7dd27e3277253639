package records

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/PolarWolf314/formvault/internal/csvline"
	"github.com/PolarWolf314/formvault/internal/vault"
)

// ExportRaw writes the record file at path to w with its header decrypted
// and every data line copied verbatim, still encrypted.
// It returns the number of data lines written. A missing file writes nothing.
func (s *Store) ExportRaw(w io.Writer, path string, key vault.Key) (int, error) {
	bw := bufio.NewWriter(w)
	lines := 0

	err := eachLine(path, func(n int, raw string) error {
		if n == 1 {
			res := vault.DecryptLine(key, raw)
			if !res.OK() {
				return fmt.Errorf("reading header of %s: %w", path, res.Err)
			}
			_, err := bw.WriteString(csvline.EncodeRow(csvline.DecodeLine(res.Plaintext)) + "\n")
			return err
		}
		lines++
		_, err := bw.WriteString(raw + "\n")
		return err
	})
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("writing raw export: %w", err)
	}
	return lines, nil
}
