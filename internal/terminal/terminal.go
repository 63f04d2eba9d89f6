// Package terminal renders views as text tables for the command line.
package terminal

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"fjacquet/cleemy-report/internal/normalizer"
	"fjacquet/cleemy-report/internal/table"
	"fjacquet/cleemy-report/internal/views"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
)

const (
	ellipsis         = "…"
	maxDistinctShown = 8
	minCellWidth     = 4
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	auditStyle  = cellStyle.Foreground(lipgloss.Color("#f38ba8"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#585b70"))
)

// Renderer writes views to a terminal.
type Renderer struct {
	out          io.Writer
	maxCellWidth int
}

// New creates a Renderer truncating cells wider than maxCellWidth.
func New(out io.Writer, maxCellWidth int) *Renderer {
	if maxCellWidth < minCellWidth {
		maxCellWidth = 40
	}
	return &Renderer{out: out, maxCellWidth: maxCellWidth}
}

// RenderView prints the title, the rows of t and the view summary. t is
// the view table, possibly filtered.
func (r *Renderer) RenderView(v *views.View, t *table.Table) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(v.Title))
	b.WriteString("\n")
	if t.Len() == 0 {
		b.WriteString(mutedStyle.Render("No rows."))
		b.WriteString("\n")
	} else {
		b.WriteString(RenderTable(t, r.maxCellWidth))
		b.WriteString("\n")
	}
	if t.Len() != v.Table.Len() {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d of %d rows shown", t.Len(), v.Table.Len())))
		b.WriteString("\n")
	}
	b.WriteString(RenderSummary(v.Summary))
	b.WriteString(RenderGroups(v))
	_, err := io.WriteString(r.out, b.String())
	return err
}

// RenderTable draws t with a border. Cells wider than maxCellWidth are
// truncated and rows carrying an audit message are highlighted.
func RenderTable(t *table.Table, maxCellWidth int) string {
	rows := make([][]string, t.Len())
	flagged := make([]bool, t.Len())
	for i, row := range t.Rows {
		cells := t.Strings(i)
		for j := range cells {
			cells[j] = ansi.Truncate(cells[j], maxCellWidth, ellipsis)
		}
		rows[i] = cells
		flagged[i] = table.Format(row[normalizer.ColAudit]) != ""
	}

	headers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = ansi.Truncate(col, maxCellWidth, ellipsis)
	}

	return ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == ltable.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(flagged) && flagged[row]:
				return auditStyle
			default:
				return cellStyle
			}
		}).
		String()
}

// RenderSummary lists the row count, the counters and the distinct values
// of a view, keys in alphabetical order.
func RenderSummary(s views.Summary) string {
	lines := []string{fmt.Sprintf("Rows: %d", s.Rows)}

	for _, key := range sortedKeys(s.Counts) {
		lines = append(lines, fmt.Sprintf("%s: %d", key, s.Counts[key]))
	}
	for _, key := range sortedKeys(s.Distinct) {
		values := s.Distinct[key]
		if len(values) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", key, joinShown(values)))
	}
	return renderLines(lines)
}

// RenderGroups lists the index groups of v in table order with their row
// counts. Views without index render nothing.
func RenderGroups(v *views.View) string {
	keys := v.Keys()
	if len(keys) == 0 {
		return ""
	}
	groups := make([]string, len(keys))
	for i, key := range keys {
		label := v.Label(key)
		if label == "" {
			label = "(none)"
		}
		groups[i] = fmt.Sprintf("%s (%d)", label, len(v.Rows(key)))
	}
	return renderLines([]string{fmt.Sprintf("Groups by %s: %s", v.LabelColumn, joinShown(groups))})
}

func joinShown(values []string) string {
	if len(values) <= maxDistinctShown {
		return strings.Join(values, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(values[:maxDistinctShown], ", "), len(values)-maxDistinctShown)
}

func renderLines(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(mutedStyle.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
