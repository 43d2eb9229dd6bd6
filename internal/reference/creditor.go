package reference

import (
	"fmt"
	"strconv"
	"strings"

	"fjacquet/payrecon/internal/textutils"
	"fjacquet/payrecon/internal/validation"
)

const (
	creditorPrefix    = "RF"
	creditorMaxLength = 25
	creditorBodyMax   = creditorMaxLength - 4
	creditorSeqDigits = creditorBodyMax - tenantDigits
)

// CreditorReferenceCheckDigits computes the two ISO 11649 check digits for
// body: "RF00" is appended, letters become numbers, and the digits are
// 98 minus the remainder modulo 97.
func CreditorReferenceCheckDigits(body string) (string, error) {
	body = strings.ToUpper(textutils.StripWhitespace(body))
	if body == "" || len(body) > creditorBodyMax {
		return "", fmt.Errorf("%w: creditor reference body must have 1 to %d characters", ErrInvalidReference, creditorBodyMax)
	}
	numeric, ok := validation.AlphanumericToDigits(body + creditorPrefix + "00")
	if !ok {
		return "", fmt.Errorf("%w: creditor reference body must be alphanumeric", ErrInvalidReference)
	}
	check := 98 - validation.Mod97(numeric)
	return fmt.Sprintf("%02d", check), nil
}

// ComputeCreditorReference prefixes body with "RF" and its check digits.
func ComputeCreditorReference(body string) (string, error) {
	check, err := CreditorReferenceCheckDigits(body)
	if err != nil {
		return "", err
	}
	return creditorPrefix + check + strings.ToUpper(textutils.StripWhitespace(body)), nil
}

// GenerateCreditorReference builds a creditor reference from the ten tenant
// digits and the sequence left-padded to eleven digits.
func GenerateCreditorReference(tenantID string, sequence int64) (string, error) {
	seq, err := formatSequence(sequence, creditorSeqDigits)
	if err != nil {
		return "", err
	}
	return ComputeCreditorReference(TenantDigits(tenantID) + seq)
}

// ValidateCreditorReference checks prefix, length, charset and mod-97.
// Whitespace is ignored and letters are case-insensitive.
func ValidateCreditorReference(ref string) error {
	s := strings.ToUpper(textutils.StripWhitespace(ref))
	if len(s) < 5 || len(s) > creditorMaxLength {
		return fmt.Errorf("%w: creditor reference must have 5 to %d characters", ErrInvalidReference, creditorMaxLength)
	}
	if !strings.HasPrefix(s, creditorPrefix) {
		return fmt.Errorf("%w: creditor reference must start with RF", ErrInvalidReference)
	}
	if _, err := strconv.Atoi(s[2:4]); err != nil {
		return fmt.Errorf("%w: creditor reference check digits must be numeric", ErrInvalidReference)
	}
	numeric, ok := validation.AlphanumericToDigits(s[4:] + s[:4])
	if !ok {
		return fmt.Errorf("%w: creditor reference must be alphanumeric", ErrInvalidReference)
	}
	if validation.Mod97(numeric) != 1 {
		return fmt.Errorf("%w: creditor reference check digits mismatch", ErrInvalidReference)
	}
	return nil
}

// FormatCreditorReference groups a creditor reference in blocks of four.
func FormatCreditorReference(ref string) string {
	s := strings.ToUpper(textutils.StripWhitespace(ref))
	var parts []string
	for i := 0; i < len(s); i += 4 {
		end := i + 4
		if end > len(s) {
			end = len(s)
		}
		parts = append(parts, s[i:end])
	}
	return strings.Join(parts, " ")
}
