package forms

import (
	"bufio"
	"fmt"
	"io"

	"github.com/PolarWolf314/formvault/internal/csvline"
	"github.com/PolarWolf314/formvault/internal/records"
)

// ExportMode selects how records are exported.
type ExportMode string

const (
	// ExportDecrypted writes the header and every readable row as plain CSV.
	ExportDecrypted ExportMode = "decrypted"

	// ExportRaw writes a plain header followed by the encrypted data lines.
	ExportRaw ExportMode = "raw"
)

// ParseExportMode validates a mode name.
func ParseExportMode(s string) (ExportMode, error) {
	switch m := ExportMode(s); m {
	case ExportDecrypted, ExportRaw:
		return m, nil
	}
	return "", fmt.Errorf("unknown export mode %q, expected %s or %s", s, ExportDecrypted, ExportRaw)
}

// WriteTable writes a scanned table as CSV. It returns the number of rows written.
func WriteTable(w io.Writer, table *records.Table) (int, error) {
	bw := bufio.NewWriter(w)

	if len(table.Header) > 0 {
		if _, err := bw.WriteString(csvline.EncodeRow(table.Header) + "\n"); err != nil {
			return 0, err
		}
	}
	for _, row := range table.Rows {
		if _, err := bw.WriteString(csvline.EncodeRow(row.Fields) + "\n"); err != nil {
			return 0, err
		}
	}

	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return len(table.Rows), nil
}
