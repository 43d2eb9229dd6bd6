package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
		wantErr  bool
	}{
		{name: "plain decimal", input: "100.50", expected: 10050},
		{name: "integer", input: "42", expected: 4200},
		{name: "one decimal", input: "12.5", expected: 1250},
		{name: "rounds half up", input: "0.125", expected: 13},
		{name: "rounds down", input: "0.124", expected: 12},
		{name: "swiss thousands", input: "1'234.50", expected: 123450},
		{name: "currency prefix", input: "CHF 99.95", expected: 9995},
		{name: "currency suffix", input: "99.95 EUR", expected: 9995},
		{name: "european format", input: "1.234,56", expected: 123456},
		{name: "comma decimal", input: "1250,00", expected: 125000},
		{name: "trailing comma", input: "1250,", expected: 125000},
		{name: "comma thousands", input: "1,234.00", expected: 123400},
		{name: "negative", input: "-5.00", expected: -500},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "above int64", input: "184467440737095517.17", wantErr: true},
		{name: "below int64", input: "-92233720368547758.09", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMinorUnits(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
		wantErr  bool
	}{
		{name: "integer", input: "100", expected: 10000},
		{name: "half away from zero", input: "0.005", expected: 1},
		{name: "negative half away from zero", input: "-0.005", expected: -1},
		{name: "int64 max", input: "92233720368547758.07", expected: 9223372036854775807},
		{name: "int64 min", input: "-92233720368547758.08", expected: -9223372036854775808},
		{name: "one past int64 max", input: "92233720368547758.08", wantErr: true},
		{name: "wraps to a small value", input: "184467440737095517.17", wantErr: true},
		{name: "one past int64 min", input: "-92233720368547758.09", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMinorUnits(decimal.RequireFromString(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrAmountOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "100.50", FormatMinor(10050))
	assert.Equal(t, "0.05", FormatMinor(5))
	assert.Equal(t, "CHF 100.00", FormatAmount(10000, "CHF"))
	assert.Equal(t, "1.00", FormatAmount(100, ""))
	assert.True(t, FromMinorUnits(12345).Equal(decimal.RequireFromString("123.45")))
}
