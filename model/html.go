package model

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ToHTML converts the table to an HTML <table> element. The first row is
// rendered inside <thead> with <th> cells; remaining rows go in <tbody>.
func (t *Table) ToHTML() string {
	var sb strings.Builder
	sb.WriteString("<table>\n")

	if len(t.Rows) > 0 {
		sb.WriteString("<thead>\n<tr>")
		for _, cell := range t.Rows[0] {
			sb.WriteString("<th>")
			sb.WriteString(html.EscapeString(cell.Text))
			sb.WriteString("</th>")
		}
		sb.WriteString("</tr>\n</thead>\n")
	}

	if len(t.Rows) > 1 {
		sb.WriteString("<tbody>\n")
		for _, row := range t.Rows[1:] {
			sb.WriteString("<tr>")
			for _, cell := range row {
				sb.WriteString("<td>")
				sb.WriteString(html.EscapeString(cell.Text))
				sb.WriteString("</td>")
			}
			sb.WriteString("</tr>\n")
		}
		sb.WriteString("</tbody>\n")
	}

	sb.WriteString("</table>")
	return sb.String()
}

// TablesFromHTML parses HTML and returns every <table> element found as a
// Table. Cell text is the concatenated text content of each <th>/<td>
// element. This is the inverse of ToHTML for tables without spans.
func TablesFromHTML(r io.Reader) (TableSet, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var tables TableSet
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			tables = append(tables, parseHTMLTable(n))
			return // Nested tables inside cells are not descended into
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return tables, nil
}

// parseHTMLTable collects the rows of one <table> node.
func parseHTMLTable(tableNode *html.Node) *Table {
	table := &Table{}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			table.Rows = append(table.Rows, parseHTMLRow(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(tableNode)

	return table
}

// parseHTMLRow collects the cells of one <tr> node.
func parseHTMLRow(tr *html.Node) []Cell {
	var cells []Cell
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, Cell{Text: textContent(c)})
		}
	}
	return cells
}

// textContent returns the concatenated text of a node's subtree.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
