package forms

import (
	"bytes"
	"testing"
	"time"

	kerrors "github.com/PolarWolf314/formvault/internal/errors"
	"github.com/PolarWolf314/formvault/internal/records"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var submittedAt = time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)

func TestBuildRow(t *testing.T) {
	cfg := &Config{Fields: append(contactFields(), Field{Name: "cv", Label: "CV", Type: TypeFile})}

	row, err := BuildRow(cfg, map[string][]string{
		"fullName": {"  =SUM(A1)  "},
		"topics":   {" sales", "", "support "},
		"cv":       {"-uploads/cv.pdf"},
		"unknown":  {"dropped"},
	}, submittedAt)
	require.NoError(t, err)

	assert.Equal(t, []string{"'=SUM(A1)", "", "sales; support", "-uploads/cv.pdf", "2024-03-09T14:30:00Z"}, row)
	assert.Len(t, row, len(Header(cfg.Fields)))
}

func TestBuildRowRequiredField(t *testing.T) {
	cfg := &Config{Fields: contactFields()}

	_, err := BuildRow(cfg, map[string][]string{"fullName": {"   "}}, submittedAt)
	assert.ErrorIs(t, err, kerrors.ErrMissingRequiredField)
	assert.ErrorContains(t, err, "fullName")
}

func TestParseAssignments(t *testing.T) {
	values, err := ParseAssignments([]string{"fullName=Jane Doe", "topics=sales", "topics=support", "note=a=b"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Jane Doe"}, values["fullName"])
	assert.Equal(t, []string{"sales", "support"}, values["topics"])
	assert.Equal(t, []string{"a=b"}, values["note"])

	_, err = ParseAssignments([]string{"novalue"})
	assert.Error(t, err)
	_, err = ParseAssignments([]string{"=x"})
	assert.Error(t, err)
}

func TestParseExportMode(t *testing.T) {
	m, err := ParseExportMode("raw")
	require.NoError(t, err)
	assert.Equal(t, ExportRaw, m)

	_, err = ParseExportMode("json")
	assert.Error(t, err)
}

func TestWriteTable(t *testing.T) {
	table := &records.Table{
		Header: []string{"name", "_submitted_at"},
		Rows: []records.Row{
			{Index: 1, Fields: []string{"Jane, Doe", "2024-01-01T00:00:00Z"}},
			{Index: 3, Fields: []string{"Bob", "2024-01-02T00:00:00Z"}},
		},
	}

	var buf bytes.Buffer
	n, err := WriteTable(&buf, table)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "name,_submitted_at\n\"Jane, Doe\",2024-01-01T00:00:00Z\nBob,2024-01-02T00:00:00Z\n", buf.String())
}

func TestSanitizeExtension(t *testing.T) {
	assert.Equal(t, "pdf", sanitizeExtension(".PDF"))
	assert.Equal(t, "tar", sanitizeExtension(".t-a_r"))
	assert.Equal(t, "", sanitizeExtension(""))
	assert.Equal(t, "abcdefghij", sanitizeExtension(".abcdefghijklmn"))
}
