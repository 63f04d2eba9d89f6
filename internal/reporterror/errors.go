// Package reporterror defines the error taxonomy of the reporting pipeline.
package reporterror

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyTable is returned when an export is requested for a table without rows.
var ErrEmptyTable = errors.New("nothing to export: table has no rows")

// Inconsistency kinds.
const (
	KindUnknownNature  = "unknown-nature"
	KindUnknownAccount = "unknown-account"
)

// ParseError represents a document that is not valid JSON.
type ParseError struct {
	Source  string
	Line    int
	Column  int
	Offset  int64
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: invalid JSON at line %d, column %d: %v", e.Source, e.Line, e.Column, e.Err)
	if e.Snippet != "" {
		msg += fmt.Sprintf(" near '%s'", e.Snippet)
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MalformedInputError represents valid JSON that lacks the expected structure.
type MalformedInputError struct {
	Source      string
	Path        string
	MissingKeys []string
	Msg         string
}

func (e *MalformedInputError) Error() string {
	if len(e.MissingKeys) > 0 {
		return fmt.Sprintf("%s: missing required section(s): %s",
			e.Source, strings.Join(e.MissingKeys, ", "))
	}
	return fmt.Sprintf("%s: malformed input at %s: %s", e.Source, e.Path, e.Msg)
}

// ReferentialInconsistency records a reference to an entity absent from
// the dataset. It is never fatal: the normalizer turns it into audit rows.
type ReferentialInconsistency struct {
	Kind      string
	Source    string
	Reference string
	Msg       string
}

func (e *ReferentialInconsistency) Error() string {
	return fmt.Sprintf("%s: %s references %s: %s", e.Kind, e.Source, e.Reference, e.Msg)
}

// ExportError represents a failed export action.
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s export to '%s' failed: %v", e.Format, e.Path, e.Err)
	}
	return fmt.Sprintf("%s export failed: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// IsEmptyTable reports whether err means there was nothing to export.
func IsEmptyTable(err error) bool {
	return errors.Is(err, ErrEmptyTable)
}
