package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"
)

// MaxCellWidth is the longest cell Table prints before truncating.
const MaxCellWidth = 40

// Table writes rows under header as aligned columns. When indexes is not
// nil the first column is the row index.
func Table(w io.Writer, header []string, indexes []int, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	numbered := indexes != nil

	cells := make([]string, 0, len(header)+1)
	if numbered {
		cells = append(cells, "#")
	}
	for _, h := range header {
		cells = append(cells, Heading.Sprint(h))
	}
	fmt.Fprintln(tw, strings.Join(cells, "\t"))

	for i, row := range rows {
		cells = cells[:0]
		if numbered {
			cells = append(cells, fmt.Sprint(indexes[i]))
		}
		for _, v := range row {
			cells = append(cells, Truncate(cleanCell(v), MaxCellWidth))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	return tw.Flush()
}

// Truncate shortens s to at most max runes, marking the cut with "…".
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}

func cleanCell(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return ' '
		}
		return r
	}, s)
}
