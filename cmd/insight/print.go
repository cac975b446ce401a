package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/razeghi71/insight/table"
)

func printResult(w io.Writer, t *table.Table) {
	cells := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = make([]string, len(t.Columns))
		for j := range t.Columns {
			if j < len(row.Values) {
				cells[i][j] = row.Values[j].AsString()
			}
		}
	}
	printTable(w, t.Columns, cells)
	fmt.Fprintf(w, "(%d rows)\n", len(t.Rows))
}

func printTable(w io.Writer, columns []string, cells [][]string) {
	if len(columns) == 0 {
		return
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	for _, row := range cells {
		for j, c := range row {
			if len(c) > widths[j] {
				widths[j] = len(c)
			}
		}
	}

	headerParts := make([]string, len(columns))
	for i, col := range columns {
		headerParts[i] = padRight(col, widths[i])
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(headerParts, " | "), " "))

	sepParts := make([]string, len(columns))
	for i := range columns {
		sepParts[i] = strings.Repeat("-", widths[i])
	}
	fmt.Fprintln(w, strings.Join(sepParts, "-+-"))

	for _, row := range cells {
		parts := make([]string, len(columns))
		for i := range columns {
			parts[i] = padRight(row[i], widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, " | "), " "))
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
