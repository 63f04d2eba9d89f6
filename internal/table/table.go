// Package table defines the normalized tabular form exchanged between the
// normalizer, the view builders, the filter engine and the exporters.
//
// A Table is an ordered list of rows that all share the same column set.
// Cell values are scalars: nil, string, int64, bool or decimal.Decimal.
package table

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Row maps a column name to its scalar value.
type Row map[string]any

// Table is an ordered sequence of uniform-shaped rows.
type Table struct {
	Name    string
	Title   string
	Columns []string
	Rows    []Row
}

// New creates an empty table with the given columns.
func New(name, title string, columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{
		Name:    name,
		Title:   title,
		Columns: cols,
		Rows:    []Row{},
	}
}

// Append adds a row whose values are given in column order.
// It panics when the number of values does not match the column count,
// which is always a programming error in the caller.
func (t *Table) Append(values ...any) {
	if len(values) != len(t.Columns) {
		panic(fmt.Sprintf("table %s: got %d values for %d columns", t.Name, len(values), len(t.Columns)))
	}
	row := make(Row, len(t.Columns))
	for i, col := range t.Columns {
		row[col] = values[i]
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether the table defines the column.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnIndex returns the position of a column or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Value returns the raw value of a cell.
func (t *Table) Value(row int, column string) any {
	return t.Rows[row][column]
}

// Strings returns the display strings of a row in column order.
func (t *Table) Strings(row int) []string {
	out := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = Format(t.Rows[row][col])
	}
	return out
}

// Records returns every row as display strings, without the header.
func (t *Table) Records() [][]string {
	records := make([][]string, len(t.Rows))
	for i := range t.Rows {
		records[i] = t.Strings(i)
	}
	return records
}

// Clone returns a deep copy of the table structure. Cell values are
// scalars and are shared.
func (t *Table) Clone() *Table {
	out := New(t.Name, t.Title, t.Columns...)
	out.Rows = make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = row.Clone()
	}
	return out
}

// WithRows returns a table with the same shape holding the given rows.
func (t *Table) WithRows(rows []Row) *Table {
	out := New(t.Name, t.Title, t.Columns...)
	out.Rows = rows
	return out
}

// Select projects the table onto a subset of its columns.
func (t *Table) Select(name, title string, columns ...string) (*Table, error) {
	for _, col := range columns {
		if !t.HasColumn(col) {
			return nil, fmt.Errorf("table %s has no column %q", t.Name, col)
		}
	}
	out := New(name, title, columns...)
	out.Rows = make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		projected := make(Row, len(columns))
		for _, col := range columns {
			projected[col] = row[col]
		}
		out.Rows[i] = projected
	}
	return out, nil
}

// Validate checks that every row carries exactly the table's columns.
func (t *Table) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("table %s row %d: has %d cells, want %d", t.Name, i, len(row), len(t.Columns))
		}
		for _, col := range t.Columns {
			if _, ok := row[col]; !ok {
				return fmt.Errorf("table %s row %d: missing column %q", t.Name, i, col)
			}
		}
	}
	return nil
}

// SortBy stably sorts the rows in place by the display value of the given
// columns, compared with the collation rules of locale.
func (t *Table) SortBy(locale string, columns ...string) {
	col := NewCollator(locale)
	sort.SliceStable(t.Rows, func(i, j int) bool {
		for _, c := range columns {
			cmp := col.CompareString(Format(t.Rows[i][c]), Format(t.Rows[j][c]))
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// NewCollator returns a collator for a BCP 47 locale such as "fr-FR".
// An unparseable locale falls back to the root collation.
func NewCollator(locale string) *collate.Collator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return collate.New(tag)
}

// Format renders a cell value for display and text exports.
func Format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case decimal.Decimal:
		return val.String()
	case []int64:
		parts := make([]string, len(val))
		for i, id := range val {
			parts[i] = strconv.FormatInt(id, 10)
		}
		return strings.Join(parts, ", ")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
