package reference

import (
	"fmt"
	"strings"

	"fjacquet/payrecon/internal/textutils"
	"fjacquet/payrecon/internal/validation"
)

// Style selects the reference scheme of an invoice.
type Style string

const (
	// StyleQRR is the 27 digit QR reference, mandatory with a QR-IBAN.
	StyleQRR Style = "qrr"
	// StyleCreditor is the ISO 11649 creditor reference for regular IBANs.
	StyleCreditor Style = "scor"
)

// ParseStyle accepts "qrr" or "scor" (case-insensitive).
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleQRR:
		return StyleQRR, nil
	case StyleCreditor:
		return StyleCreditor, nil
	}
	return "", fmt.Errorf("unknown reference style %q (want qrr or scor)", s)
}

// StyleForIBAN picks the style a collection account requires.
func StyleForIBAN(iban string) Style {
	if validation.IsQRIBAN(iban) {
		return StyleQRR
	}
	return StyleCreditor
}

// Generator produces references for freshly issued invoice sequence numbers.
type Generator struct{}

// NewGenerator returns a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns the reference for the tenant's sequence number in the
// requested style. The result only depends on its inputs.
func (g *Generator) Generate(style Style, tenantID string, sequence int64) (string, error) {
	switch style {
	case StyleQRR:
		return GenerateQRR(tenantID, sequence)
	case StyleCreditor:
		return GenerateCreditorReference(tenantID, sequence)
	default:
		return "", fmt.Errorf("unknown reference style %q", style)
	}
}

// Validate accepts either a QR reference or a creditor reference.
func Validate(ref string) (Style, error) {
	s := strings.ToUpper(textutils.StripWhitespace(ref))
	if strings.HasPrefix(s, creditorPrefix) {
		return StyleCreditor, ValidateCreditorReference(s)
	}
	return StyleQRR, ValidateQRR(s)
}

// Format prints a reference in its conventional grouping.
func Format(ref string) string {
	s := strings.ToUpper(textutils.StripWhitespace(ref))
	if strings.HasPrefix(s, creditorPrefix) {
		return FormatCreditorReference(s)
	}
	return FormatQRR(s)
}

// FindInText returns the first valid reference embedded in free text, or ""
// when there is none.
func FindInText(text string) string {
	for _, candidate := range textutils.ReferenceCandidates(text) {
		if _, err := Validate(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
