package ui

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// WriteTable prints header and rows as space-aligned columns. Widths are
// display widths, so CJK titles line up in a terminal.
func WriteTable(w io.Writer, header []string, rows [][]string) error {
	cols := len(header)
	widths := make([]int, cols)

	measure := func(row []string) {
		for i := 0; i < cols && i < len(row); i++ {
			if n := runewidth.StringWidth(row[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	measure(header)
	for _, r := range rows {
		measure(r)
	}

	var sb strings.Builder
	line := func(row []string) {
		var l strings.Builder
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}

			l.WriteString(cell)
			if i < cols-1 {
				l.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)+2))
			}
		}
		sb.WriteString(strings.TrimRight(l.String(), " "))
		sb.WriteString("\n")
	}

	line(header)
	for _, r := range rows {
		line(r)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
