package reporterror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ParseError
		expected string
	}{
		{
			name: "with snippet",
			err: &ParseError{
				Source:  "Full.json",
				Line:    3,
				Column:  7,
				Offset:  42,
				Snippet: `"id": }`,
				Err:     errors.New("invalid character '}' looking for beginning of value"),
			},
			expected: `Full.json: invalid JSON at line 3, column 7: invalid character '}' looking for beginning of value near '"id": }'`,
		},
		{
			name: "without snippet",
			err: &ParseError{
				Source: "<input>",
				Line:   1,
				Column: 1,
				Err:    errors.New("unexpected end of JSON input"),
			},
			expected: "<input>: invalid JSON at line 1, column 1: unexpected end of JSON input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestParseError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ParseError{Source: "x", Err: inner}
	assert.True(t, errors.Is(err, inner))
}

func TestMalformedInputError(t *testing.T) {
	tests := []struct {
		name     string
		err      *MalformedInputError
		expected string
	}{
		{
			name:     "missing sections",
			err:      &MalformedInputError{Source: "Full.json", Path: "$", MissingKeys: []string{"profiles", "chartsOfAccounts"}},
			expected: "Full.json: missing required section(s): profiles, chartsOfAccounts",
		},
		{
			name:     "wrong type at path",
			err:      &MalformedInputError{Source: "Full.json", Path: "profiles[2].idNatures", Msg: "expected an array"},
			expected: "Full.json: malformed input at profiles[2].idNatures: expected an array",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestReferentialInconsistency(t *testing.T) {
	err := &ReferentialInconsistency{
		Kind:      KindUnknownNature,
		Source:    "profile Alice",
		Reference: "nature 42",
		Msg:       "not in the nature catalog",
	}
	assert.Equal(t, "unknown-nature: profile Alice references nature 42: not in the nature catalog", err.Error())
}

func TestExportError(t *testing.T) {
	withPath := &ExportError{Format: "pdf", Path: "/tmp/out.pdf", Err: errors.New("permission denied")}
	assert.Equal(t, "pdf export to '/tmp/out.pdf' failed: permission denied", withPath.Error())

	empty := &ExportError{Format: "csv", Err: ErrEmptyTable}
	assert.Equal(t, "csv export failed: nothing to export: table has no rows", empty.Error())
}

func TestIsEmptyTable(t *testing.T) {
	wrapped := fmt.Errorf("overview: %w", &ExportError{Format: "xlsx", Err: ErrEmptyTable})
	assert.True(t, IsEmptyTable(wrapped))

	ioErr := &ExportError{Format: "xlsx", Path: "/nope", Err: errors.New("no such directory")}
	assert.False(t, IsEmptyTable(ioErr))

	var exportErr *ExportError
	assert.True(t, errors.As(wrapped, &exportErr))
	assert.Equal(t, "xlsx", exportErr.Format)
}
