package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatterWithColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	result := Code.Sprint("formvault form list jane")
	assert.NotContains(t, result, "`")
	assert.Contains(t, result, "\x1b[")
}

func TestFormatterWithNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name      string
		formatter Formatter
		input     string
		want      string
	}{
		{"Code adds backticks", Code, "formvault sweep", "`formvault sweep`"},
		{"Path has no decoration", Path, "users/jane/forms", "users/jane/forms"},
		{"Success has no decoration", Success, "✓", "✓"},
		{"Error has no decoration", Error, "✗", "✗"},
		{"Highlight adds quotes", Highlight, "contact-us", "'contact-us'"},
		{"Muted adds parentheses", Muted, "private", "(private)"},
		{"Heading has no decoration", Heading, "fullName", "fullName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.formatter.Sprint(tt.input))
		})
	}

	assert.Equal(t, "'3 rows'", Highlight.Sprintf("%d rows", 3))
}

func TestTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	err := Table(&buf, []string{"name", "note"}, []int{1, 3}, [][]string{
		{"Jane", "line\nbreak"},
		{"Bob", strings.Repeat("x", 50)},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "#"))
	assert.Contains(t, lines[1], "line break")
	assert.True(t, strings.HasPrefix(lines[2], "3"))
	assert.Contains(t, lines[2], strings.Repeat("x", MaxCellWidth-1)+"…")
}

func TestTableWithoutIndexes(t *testing.T) {
	var buf bytes.Buffer
	err := Table(&buf, []string{"username", "role"}, nil, [][]string{{"jane", "admin"}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "jane"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc…", Truncate("abcdefg", 4))
	assert.Equal(t, "héll…", Truncate("héllo wörld", 5))
}

func TestEnsureNewline(t *testing.T) {
	assert.Equal(t, "\n", EnsureNewline(""))
	assert.Equal(t, "done\n", EnsureNewline("done"))
	assert.Equal(t, "done\n", EnsureNewline("done\n"))
}
