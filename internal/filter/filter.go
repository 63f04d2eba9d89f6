// Package filter selects table rows matching user predicates.
//
// Predicates combine with AND; the values of one predicate combine with
// OR. Cells are compared through their display string, so a nil cell
// matches the empty value.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"fjacquet/cleemy-report/internal/table"
)

var (
	// ErrUnknownColumn is returned when a predicate names a column the
	// table does not have.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNilTable is returned when Apply is given no table.
	ErrNilTable = errors.New("no table to filter")
)

// Predicate selects rows whose Field displays as one of Values. A
// predicate without values selects every row.
type Predicate struct {
	Field  string
	Values []string
}

// String renders the predicate in the syntax ParsePredicates accepts.
func (p Predicate) String() string {
	escaped := make([]string, len(p.Values))
	for i, v := range p.Values {
		escaped[i] = strings.ReplaceAll(strings.ReplaceAll(v, `\`, `\\`), ",", `\,`)
	}
	return p.Field + "=" + strings.Join(escaped, ",")
}

// Apply returns the rows of t matching every predicate, in their original
// order. The input table is never modified and the result shares no row
// with it. With no predicates the result equals t.
func Apply(t *table.Table, preds []Predicate) (*table.Table, error) {
	if t == nil {
		return nil, ErrNilTable
	}
	for _, p := range preds {
		if !t.HasColumn(p.Field) {
			return nil, fmt.Errorf("%w %q in table %s (columns: %s)",
				ErrUnknownColumn, p.Field, t.Name, strings.Join(t.Columns, ", "))
		}
	}

	sets := make([]map[string]bool, 0, len(preds))
	fields := make([]string, 0, len(preds))
	for _, p := range preds {
		if len(p.Values) == 0 {
			continue
		}
		set := make(map[string]bool, len(p.Values))
		for _, v := range p.Values {
			set[v] = true
		}
		sets = append(sets, set)
		fields = append(fields, p.Field)
	}

	rows := make([]table.Row, 0, t.Len())
	for _, row := range t.Rows {
		if matches(row, fields, sets) {
			rows = append(rows, row.Clone())
		}
	}
	return t.WithRows(rows), nil
}

func matches(row table.Row, fields []string, sets []map[string]bool) bool {
	for i, field := range fields {
		if !sets[i][table.Format(row[field])] {
			return false
		}
	}
	return true
}

// ParsePredicates parses command-line filters of the form
// "Column=value1,value2". A backslash escapes a comma or a backslash in a
// value; "Column=" selects empty cells.
func ParsePredicates(specs []string) ([]Predicate, error) {
	preds := make([]Predicate, 0, len(specs))
	for _, spec := range specs {
		field, raw, ok := strings.Cut(spec, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid filter %q: expected Column=value[,value...]", spec)
		}
		values, err := splitValues(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", spec, err)
		}
		preds = append(preds, Predicate{Field: field, Values: values})
	}
	return preds, nil
}

func splitValues(raw string) ([]string, error) {
	var values []string
	var current strings.Builder
	escaped := false
	for _, r := range raw {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ',':
			values = append(values, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if escaped {
		return nil, errors.New("dangling escape at end of value")
	}
	values = append(values, strings.TrimSpace(current.String()))
	return values, nil
}

// Describe renders predicates for logs and titles.
func Describe(preds []Predicate) string {
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = p.String()
	}
	return strings.Join(parts, " AND ")
}
