package parsererror

import (
	"errors"
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
			name: "with record number",
			err: &ParseError{
				Parser: "mt940",
				Record: 4,
				Field:  "amount",
				Value:  "12x,00",
				Err:    errors.New("invalid decimal"),
			},
			expected: "mt940: record 4: failed to parse amount='12x,00': invalid decimal",
		},
		{
			name: "without record number",
			err: &ParseError{
				Parser: "csv",
				Field:  "value_date",
				Value:  "",
				Err:    errors.New("empty date"),
			},
			expected: "csv: failed to parse value_date='': empty date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestParseError_Unwrap(t *testing.T) {
	original := errors.New("original error")
	err := &ParseError{Parser: "camt", Field: "Amt", Value: "x", Err: original}

	assert.True(t, errors.Is(err, original))

	var target *ParseError
	assert.True(t, errors.As(error(err), &target))
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "amount", Reason: "must not be negative"}
	assert.Equal(t, "validation failed for amount: must not be negative", err.Error())
}

func TestInvalidFormatError(t *testing.T) {
	tests := []struct {
		name     string
		err      *InvalidFormatError
		expected string
	}{
		{
			name:     "without snippet",
			err:      &InvalidFormatError{Source: "stmt.xml", ExpectedFormat: "camt", Msg: "not XML"},
			expected: "invalid format in 'stmt.xml': not XML. Expected: camt",
		},
		{
			name:     "with snippet",
			err:      &InvalidFormatError{Source: "stmt.xml", ExpectedFormat: "camt", Msg: "not XML", ActualContentSnippet: "amount,date"},
			expected: "invalid format in 'stmt.xml': not XML. Expected: camt. Content snippet: 'amount,date'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "abc", Snippet([]byte("abcdef"), 3))
	assert.Equal(t, "ab", Snippet([]byte("ab"), 3))
}

func TestDataExtractionError(t *testing.T) {
	err := &DataExtractionError{Source: "camt", FieldName: "Amt", Reason: "missing"}
	assert.Equal(t, "data extraction failed in 'camt' for field 'Amt': missing", err.Error())

	err.RawDataSnippet = "<Ntry>"
	assert.Contains(t, err.Error(), "Raw data snippet: '<Ntry>'")
}
