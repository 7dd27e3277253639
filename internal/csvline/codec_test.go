package csvline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeRow(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   string
	}{
		{"plain", []string{"fullName", "message", "_submitted_at"}, "fullName,message,_submitted_at"},
		{"empty fields", []string{"a", "", "b"}, "a,,b"},
		{"delimiter", []string{"Hello, world"}, `"Hello, world"`},
		{"space", []string{"Jane Doe"}, `"Jane Doe"`},
		{"quote doubled", []string{`say "hi"`}, `"say ""hi"""`},
		{"escaped quote kept", []string{`a\"b`}, `"a\"b"`},
		{"paired escape then quote", []string{`a\\"b`}, `"a\\""b"`},
		{"newline", []string{"line1\nline2"}, "\"line1\nline2\""},
		{"tab", []string{"a\tb"}, "\"a\tb\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeRow(tt.fields))
		})
	}
}

func TestDecodeLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"empty line", "", []string{""}},
		{"trailing delimiter", "a,", []string{"a", ""}},
		{"enclosed delimiter", `"a,b",c`, []string{"a,b", "c"}},
		{"doubled quote", `"x ""y"" z"`, []string{`x "y" z`}},
		{"escape sequence kept", `"a\"b"`, []string{`a\"b`}},
		{"bytes after enclosure", `"ab"cd,e`, []string{"abcd", "e"}},
		{"unterminated enclosure", `"abc`, []string{"abc"}},
		{"strips line ending", "a,b\r\n", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeLine(tt.line))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	rows := [][]string{
		{"Jane", "Hello", "2024-01-01T00:00:00Z"},
		{"", "", ""},
		{"a,b", `c"d`, "e\nf", "g\r\nh"},
		{`back\slash`, `\"`, `\\"`, `"quoted"`},
		{"  padded  ", "\ttabbed", "日本語, ünïcödé"},
		{`C:\path\to\file.txt`, "'=SUM(A1)"},
		{`"`, `""`, `,`, `\\`},
	}

	for _, row := range rows {
		assert.Equal(t, row, DecodeLine(EncodeRow(row)), "row %q", row)
	}
}

func TestNeutralize(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"=SUM(A1:A2)": "'=SUM(A1:A2)",
		"+1":          "'+1",
		"-5":          "'-5",
		"@cmd":        "'@cmd",
		"hello":       "hello",
		"a=b":         "a=b",
		" =x":         " =x",
	}

	for in, want := range tests {
		assert.Equal(t, want, Neutralize(in), "input %q", in)
	}
}

func TestNeutralizeIsNotReversedOnDecode(t *testing.T) {
	row := NeutralizeRow([]string{"=1+1", "ok"})
	assert.Equal(t, []string{"'=1+1", "ok"}, DecodeLine(EncodeRow(row)))
}
