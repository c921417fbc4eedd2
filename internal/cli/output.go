package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table provides aligned column output. Cells may carry ANSI styling.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	for len(cells) < len(t.headers) {
		cells = append(cells, "")
	}
	for i, cell := range cells {
		if i < len(t.widths) {
			t.widths[i] = max(t.widths[i], lipgloss.Width(cell))
		}
	}
	t.rows = append(t.rows, cells)
}

// String renders the table as a string.
func (t *Table) String() string {
	if len(t.headers) == 0 {
		return ""
	}

	var b strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		var line strings.Builder
		for i := range t.widths {
			if i > 0 {
				line.WriteString("  ")
			}
			cell := padRight(cells[i], t.widths[i])
			if i == len(t.widths)-1 {
				cell = strings.TrimRight(cell, " ")
			}
			line.WriteString(style(cell))
		}
		b.WriteString(strings.TrimRight(line.String(), " ") + "\n")
	}

	writeRow(t.headers, Header)
	sep := make([]string, len(t.widths))
	for i, w := range t.widths {
		sep[i] = strings.Repeat("─", w)
	}
	writeRow(sep, Dim)
	for _, row := range t.rows {
		writeRow(row, func(s string) string { return s })
	}
	return b.String()
}

// padRight pads s to width visible cells.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// List renders marked lines: "  ✓ applied 001_x".
type List struct {
	lines []string
}

// NewList creates a new list.
func NewList() *List {
	return &List{}
}

func (l *List) add(marker, content string) {
	l.lines = append(l.lines, "  "+marker+" "+content)
}

func (l *List) Add(content string)        { l.add("•", content) }
func (l *List) AddSuccess(content string) { l.add(Success("✓"), content) }
func (l *List) AddError(content string)   { l.add(Error("✗"), content) }
func (l *List) AddWarning(content string) { l.add(Warning("!"), content) }
func (l *List) AddInfo(content string)    { l.add(Info("→"), content) }

// Len returns the number of items.
func (l *List) Len() int { return len(l.lines) }

// String renders the list as a string.
func (l *List) String() string {
	if len(l.lines) == 0 {
		return ""
	}
	return strings.Join(l.lines, "\n") + "\n"
}

// FormatKeyValue formats a key-value pair.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("%s: %s", Dim(key), value)
}

// FormatCount formats a count with singular/plural form.
func FormatCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
