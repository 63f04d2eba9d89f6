package filter

import (
	"testing"

	"fjacquet/cleemy-report/internal/table"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *table.Table {
	t := table.New("overview", "Overview", "Profile", "Nature", "Limit", "Period")
	t.Append("Alice", "Travel", decimal.NewFromInt(100), "Monthly")
	t.Append("Alice", "Meals", decimal.RequireFromString("25.5"), "Daily")
	t.Append("Bob", nil, nil, nil)
	t.Append("Carol", "Travel", nil, "Monthly")
	t.Append("Carol", "Hotel", decimal.NewFromInt(150), "Daily")
	return t
}

func column(t *table.Table, col string) []string {
	out := make([]string, t.Len())
	for i, row := range t.Rows {
		out[i] = table.Format(row[col])
	}
	return out
}

func TestApply_EmptyPredicatesIsIdentity(t *testing.T) {
	for _, preds := range [][]Predicate{nil, {}} {
		input := sampleTable()
		out, err := Apply(input, preds)
		require.NoError(t, err)

		assert.Equal(t, input.Columns, out.Columns)
		assert.Equal(t, input.Rows, out.Rows)
		assert.Equal(t, input.Name, out.Name)
		assert.Equal(t, input.Title, out.Title)
	}

	empty := table.New("empty", "", "A")
	out, err := Apply(empty, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		preds    []Predicate
		profiles []string
	}{
		{"single value", []Predicate{{Field: "Profile", Values: []string{"Alice"}}}, []string{"Alice", "Alice"}},
		{"any of", []Predicate{{Field: "Profile", Values: []string{"Bob", "Carol"}}}, []string{"Bob", "Carol", "Carol"}},
		{
			"and across fields",
			[]Predicate{
				{Field: "Nature", Values: []string{"Travel"}},
				{Field: "Period", Values: []string{"Monthly"}},
			},
			[]string{"Alice", "Carol"},
		},
		{
			"and with any of",
			[]Predicate{
				{Field: "Profile", Values: []string{"Alice", "Carol"}},
				{Field: "Period", Values: []string{"Daily"}},
			},
			[]string{"Alice", "Carol"},
		},
		{"nil matches empty", []Predicate{{Field: "Nature", Values: []string{""}}}, []string{"Bob"}},
		{"decimal display", []Predicate{{Field: "Limit", Values: []string{"25.5"}}}, []string{"Alice"}},
		{"no value means no constraint", []Predicate{{Field: "Nature"}}, []string{"Alice", "Alice", "Bob", "Carol", "Carol"}},
		{"no match", []Predicate{{Field: "Profile", Values: []string{"alice"}}}, []string{}},
		{
			"same field twice intersects",
			[]Predicate{
				{Field: "Profile", Values: []string{"Alice", "Bob"}},
				{Field: "Profile", Values: []string{"Bob", "Carol"}},
			},
			[]string{"Bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Apply(sampleTable(), tt.preds)
			require.NoError(t, err)
			assert.Equal(t, tt.profiles, column(out, "Profile"))
			assert.NoError(t, out.Validate())
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	input := sampleTable()
	before := input.Records()

	out, err := Apply(input, []Predicate{{Field: "Profile", Values: []string{"Alice"}}})
	require.NoError(t, err)

	out.Rows[0]["Profile"] = "Mallory"
	out.Rows = out.Rows[:0]

	assert.Equal(t, before, input.Records())
	assert.Equal(t, 5, input.Len())
}

func TestApply_Idempotent(t *testing.T) {
	preds := []Predicate{
		{Field: "Period", Values: []string{"Daily", "Monthly"}},
		{Field: "Nature", Values: []string{"Travel", "Hotel"}},
	}

	once, err := Apply(sampleTable(), preds)
	require.NoError(t, err)
	twice, err := Apply(once, preds)
	require.NoError(t, err)

	assert.Equal(t, once.Records(), twice.Records())
	assert.Equal(t, []string{"Alice", "Carol", "Carol"}, column(twice, "Profile"))
}

func TestApply_UnknownColumn(t *testing.T) {
	_, err := Apply(sampleTable(), []Predicate{
		{Field: "Profile", Values: []string{"Alice"}},
		{Field: "Budget", Values: []string{"1"}},
	})
	require.ErrorIs(t, err, ErrUnknownColumn)
	assert.Contains(t, err.Error(), `"Budget"`)
}

func TestApply_NilTable(t *testing.T) {
	out, err := Apply(nil, nil)
	require.ErrorIs(t, err, ErrNilTable)
	assert.Nil(t, out)

	_, err = Apply(nil, []Predicate{{Field: "Profile", Values: []string{"Alice"}}})
	assert.ErrorIs(t, err, ErrNilTable)
}

func TestParsePredicates(t *testing.T) {
	tests := []struct {
		name     string
		specs    []string
		expected []Predicate
		wantErr  bool
	}{
		{"nil", nil, []Predicate{}, false},
		{"single", []string{"Profile=Alice"}, []Predicate{{Field: "Profile", Values: []string{"Alice"}}}, false},
		{
			"multiple values with spaces",
			[]string{" Profile = Alice , Bob "},
			[]Predicate{{Field: "Profile", Values: []string{"Alice", "Bob"}}},
			false,
		},
		{"empty value", []string{"Nature="}, []Predicate{{Field: "Nature", Values: []string{""}}}, false},
		{"equals in value", []string{"Audit=a=b"}, []Predicate{{Field: "Audit", Values: []string{"a=b"}}}, false},
		{
			"escaped comma",
			[]string{`VAT IDs=4\, 5,6`},
			[]Predicate{{Field: "VAT IDs", Values: []string{"4, 5", "6"}}},
			false,
		},
		{
			"several filters",
			[]string{"Profile=Alice", "Period=Monthly,Daily"},
			[]Predicate{
				{Field: "Profile", Values: []string{"Alice"}},
				{Field: "Period", Values: []string{"Monthly", "Daily"}},
			},
			false,
		},
		{"missing equals", []string{"Profile"}, nil, true},
		{"missing field", []string{"=Alice"}, nil, true},
		{"dangling escape", []string{`Profile=Alice\`}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preds, err := ParsePredicates(tt.specs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, preds)
		})
	}
}

func TestPredicate_StringRoundTrip(t *testing.T) {
	p := Predicate{Field: "VAT IDs", Values: []string{"4, 5", `a\b`, "6"}}
	assert.Equal(t, `VAT IDs=4\, 5,a\\b,6`, p.String())

	parsed, err := ParsePredicates([]string{p.String()})
	require.NoError(t, err)
	assert.Equal(t, []Predicate{p}, parsed)

	assert.Equal(t, "Profile=Alice AND Period=Daily,Monthly", Describe([]Predicate{
		{Field: "Profile", Values: []string{"Alice"}},
		{Field: "Period", Values: []string{"Daily", "Monthly"}},
	}))
}
