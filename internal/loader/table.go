package loader

import (
	"strings"
)

// Table is a raw tabular dataset: normalized column labels plus string
// cell values. Rows are padded so every row has len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NormalizeLabel converts a source column label to its canonical token
// form: trimmed, lowercased, spaces to underscores, "#" to "no" and "."
// to "_". "Txn Invoice #" becomes "txn_invoice_no".
func NormalizeLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "#", "no")
	s = strings.ReplaceAll(s, ".", "_")
	return s
}

// FindColumn returns the index of the first column whose normalized
// label contains the given substring, or -1.
func (t *Table) FindColumn(contains string) int {
	for i, c := range t.Columns {
		if strings.Contains(c, contains) {
			return i
		}
	}
	return -1
}

// FindExact returns the index of the first column whose label matches
// one of the candidates exactly, checked in candidate order, or -1.
func (t *Table) FindExact(candidates ...string) int {
	for _, want := range candidates {
		for i, c := range t.Columns {
			if c == want {
				return i
			}
		}
	}
	return -1
}

// Cell returns the value at (row, col), or "" when the row is short or
// the column is absent.
func (t *Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// pad extends a row with empty cells up to the column count.
func pad(row []string, width int) []string {
	for len(row) < width {
		row = append(row, "")
	}
	return row
}
