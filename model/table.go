package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Cell represents a table cell.
type Cell struct {
	Text string
	BBox BBox
}

// Table represents a table with cells organized in rows. Rows are not
// required to share a length; ragged tables occur when the extractor merges
// spanned cells.
type Table struct {
	Rows [][]Cell
	BBox BBox
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of columns in the first row.
func (t *Table) ColCount() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// CellCount returns the total number of cells across all rows. It is the
// measure used to pick the "largest" table on a page.
func (t *Table) CellCount() int {
	n := 0
	for _, row := range t.Rows {
		n += len(row)
	}
	return n
}

// Normalize returns a copy of the table with every cell's text in Unicode
// NFC form with surrounding whitespace trimmed. Extractors working from
// decomposed glyph sequences otherwise produce cells that compare unequal
// to their composed equivalents.
func (t *Table) Normalize() *Table {
	out := &Table{
		Rows: make([][]Cell, len(t.Rows)),
		BBox: t.BBox,
	}
	for i, row := range t.Rows {
		out.Rows[i] = make([]Cell, len(row))
		for j, cell := range row {
			cell.Text = strings.TrimSpace(norm.NFC.String(cell.Text))
			out.Rows[i][j] = cell
		}
	}
	return out
}

// ToMarkdown converts the table to markdown format. The first row is
// rendered as the header row.
func (t *Table) ToMarkdown() string {
	if len(t.Rows) == 0 {
		return ""
	}

	var sb strings.Builder

	// Header row
	for j, cell := range t.Rows[0] {
		sb.WriteString("| ")
		sb.WriteString(strings.ReplaceAll(cell.Text, "\n", " "))
		sb.WriteString(" ")
		if j == len(t.Rows[0])-1 {
			sb.WriteString("|")
		}
	}
	sb.WriteString("\n")

	// Separator
	for j := range t.Rows[0] {
		sb.WriteString("|---")
		if j == len(t.Rows[0])-1 {
			sb.WriteString("|")
		}
	}
	sb.WriteString("\n")

	// Data rows
	for i := 1; i < len(t.Rows); i++ {
		for j, cell := range t.Rows[i] {
			sb.WriteString("| ")
			sb.WriteString(strings.ReplaceAll(cell.Text, "\n", " "))
			sb.WriteString(" ")
			if j == len(t.Rows[i])-1 {
				sb.WriteString("|")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToCSV converts the table to CSV format.
func (t *Table) ToCSV() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, cell := range row {
			// Escape quotes and wrap in quotes if necessary
			text := cell.Text
			if strings.Contains(text, ",") || strings.Contains(text, "\"") || strings.Contains(text, "\n") {
				text = "\"" + strings.ReplaceAll(text, "\"", "\"\"") + "\""
			}
			sb.WriteString(text)
			if j < len(row)-1 {
				sb.WriteString(",")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// TableSet holds all tables extracted from a single page, in detection
// order. A nil or empty TableSet means the page had no tables.
type TableSet []*Table

// Largest returns the table with the greatest total cell count, or nil if
// the set is empty. Ties keep the earlier table.
func (ts TableSet) Largest() *Table {
	var best *Table
	for _, t := range ts {
		if best == nil || t.CellCount() > best.CellCount() {
			best = t
		}
	}
	return best
}
