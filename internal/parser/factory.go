package parser

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Format identifies a statement wire format.
type Format string

const (
	// CSV is delimited text: amount, value date, reference, description.
	CSV Format = "csv"
	// MT940 is the line oriented SWIFT statement.
	MT940 Format = "mt940"
	// CAMT is an ISO 20022 camt.052/053/054 XML document.
	CAMT Format = "camt"
)

// ErrUnknownFormat is returned for formats without a registered parser.
var ErrUnknownFormat = errors.New("unknown statement format")

// ParseFormat maps user input ("CSV", "mt940", "xml", ...) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv", "txt":
		return CSV, nil
	case "mt940", "sta", "swift":
		return MT940, nil
	case "camt", "xml", "camt.053", "camt.054", "camt.052":
		return CAMT, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// DetectFormat guesses the format from content first and file extension
// second. head should hold the first few hundred bytes of the file.
func DetectFormat(filename string, head []byte) (Format, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(head, []byte("\xef\xbb\xbf")))
	switch {
	case bytes.HasPrefix(trimmed, []byte("<")):
		return CAMT, nil
	case bytes.Contains(trimmed, []byte(":61:")) || bytes.HasPrefix(trimmed, []byte(":20:")):
		return MT940, nil
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext != "" {
		if f, err := ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	if bytes.Contains(trimmed, []byte(",")) {
		return CSV, nil
	}
	return "", fmt.Errorf("%w: cannot detect format of %s", ErrUnknownFormat, filename)
}

// Registry maps formats to parser instances.
type Registry struct {
	parsers map[Format]Parser
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[Format]Parser)}
}

// Register adds or replaces the parser for f.
func (r *Registry) Register(f Format, p Parser) {
	r.parsers[f] = p
}

// Get returns the parser registered for f.
func (r *Registry) Get(f Format) (Parser, error) {
	p, ok := r.parsers[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
	return p, nil
}

// Formats lists registered formats in name order.
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.parsers))
	for f := range r.parsers {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
