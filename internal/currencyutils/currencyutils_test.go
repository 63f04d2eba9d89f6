package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		amountStr string
		expected  string
		hasError  bool
	}{
		{"Empty string", "", "0", false},
		{"Blank string", "   ", "0", false},
		{"Simple decimal", "123.45", "123.45", false},
		{"Negative decimal", "-123.45", "-123.45", false},
		{"Integer", "100", "100", false},
		{"Comma decimal separator", "123,45", "123.45", false},
		{"Comma thousand separator", "1,234.56", "1234.56", false},
		{"Comma thousands only", "1,234", "1234", false},
		{"Apostrophe thousand separator", "1'234.56", "1234.56", false},
		{"European format", "1.234,56", "1234.56", false},
		{"Swiss with comma decimals", "1'234,50", "1234.5", false},
		{"Euro symbol", "€123.45", "123.45", false},
		{"Dollar symbol", "$123.45", "123.45", false},
		{"Currency code prefix", "CHF 123.45", "123.45", false},
		{"Currency code suffix", "15,25 EUR", "15.25", false},
		{"Surrounding spaces", "  123.45  ", "123.45", false},
		{"Non-breaking space", "1 234,56", "1234.56", false},
		{"Malformed decimal", "123.45.67", "", true},
		{"Non-numeric", "abc", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseAmount(tc.amountStr)

			if tc.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			expected := decimal.RequireFromString(tc.expected)
			assert.True(t, expected.Equal(result), "expected %s but got %s", expected, result)
		})
	}
}

func TestStandardizeAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"CHF 1'234.56", "1234.56"},
		{"€1.234,56", "1234.56"},
		{"$1,234.56", "1234.56"},
		{"1 234,56", "1234.56"},
		{"100", "100"},
		{"-42,5", "-42.5"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, StandardizeAmount(tc.input))
		})
	}
}
