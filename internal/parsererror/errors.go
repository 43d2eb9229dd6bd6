// Package parsererror holds the typed errors raised while decoding bank
// statements and validating payment input.
package parsererror

import "fmt"

// ParseError describes one statement record that could not be decoded.
// Parsers log it and skip the record.
type ParseError struct {
	Parser string
	// Record is the 1-based line or entry number within the input, 0 when unknown.
	Record int
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Record > 0 {
		return fmt.Sprintf("%s: record %d: failed to parse %s='%s': %v",
			e.Parser, e.Record, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: failed to parse %s='%s': %v", e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError is returned when a payment or invoice input breaks a
// domain rule, e.g. a negative amount.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// InvalidFormatError means the whole input does not look like the expected
// statement format. Only strict parsers and format detection raise it.
type InvalidFormatError struct {
	Source               string
	ExpectedFormat       string
	ActualContentSnippet string
	Msg                  string
}

func (e *InvalidFormatError) Error() string {
	if e.ActualContentSnippet != "" {
		return fmt.Sprintf("invalid format in '%s': %s. Expected: %s. Content snippet: '%s'",
			e.Source, e.Msg, e.ExpectedFormat, e.ActualContentSnippet)
	}
	return fmt.Sprintf("invalid format in '%s': %s. Expected: %s", e.Source, e.Msg, e.ExpectedFormat)
}

// DataExtractionError means a document parsed but a required field of one
// of its entries could not be read.
type DataExtractionError struct {
	Source         string
	FieldName      string
	RawDataSnippet string
	Reason         string
}

func (e *DataExtractionError) Error() string {
	if e.RawDataSnippet != "" {
		return fmt.Sprintf("data extraction failed in '%s' for field '%s': %s. Raw data snippet: '%s'",
			e.Source, e.FieldName, e.Reason, e.RawDataSnippet)
	}
	return fmt.Sprintf("data extraction failed in '%s' for field '%s': %s", e.Source, e.FieldName, e.Reason)
}

// Snippet trims b to at most n bytes for use in InvalidFormatError.
func Snippet(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
