package csvline

import (
	"strings"
)

const (
	Delimiter = ','
	Enclosure = '"'
	Escape    = '\\'
)

// EncodeRow serializes fields to a single line without a trailing newline.
func EncodeRow(fields []string) string {
	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(Delimiter)
		}
		writeField(&b, field)
	}
	return b.String()
}

func needsEnclosure(field string) bool {
	return strings.ContainsAny(field, ",\"\\\n\r\t ")
}

func writeField(b *strings.Builder, field string) {
	if !needsEnclosure(field) {
		b.WriteString(field)
		return
	}

	b.WriteByte(Enclosure)
	escaped := false
	for i := 0; i < len(field); i++ {
		c := field[i]
		switch {
		case c == Escape:
			escaped = !escaped
		case !escaped && c == Enclosure:
			b.WriteByte(Enclosure)
		default:
			escaped = false
		}
		b.WriteByte(c)
	}
	b.WriteByte(Enclosure)
}

// DecodeLine parses a single line into its fields.
// An empty line decodes to a single empty field.
func DecodeLine(line string) []string {
	line = strings.TrimRight(line, "\r\n")

	var (
		fields []string
		field  strings.Builder
	)

	i := 0
	for {
		field.Reset()

		if i < len(line) && line[i] == Enclosure {
			i = readEnclosed(line, i+1, &field)
		}

		// Bytes after a closing enclosure, or an unenclosed field.
		for i < len(line) && line[i] != Delimiter {
			field.WriteByte(line[i])
			i++
		}

		fields = append(fields, field.String())

		if i >= len(line) {
			return fields
		}
		i++ // delimiter
	}
}

// readEnclosed consumes an enclosed field starting after the opening quote
// and returns the index just past the closing quote.
func readEnclosed(line string, i int, field *strings.Builder) int {
	for i < len(line) {
		c := line[i]
		switch {
		case c == Escape && i+1 < len(line):
			field.WriteByte(c)
			field.WriteByte(line[i+1])
			i += 2
		case c == Enclosure:
			if i+1 < len(line) && line[i+1] == Enclosure {
				field.WriteByte(Enclosure)
				i += 2
				continue
			}
			return i + 1
		default:
			field.WriteByte(c)
			i++
		}
	}
	return i
}
