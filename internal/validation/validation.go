// Package validation checks bank account identifiers used to decide which
// payment reference style an invoice gets.
package validation

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"fjacquet/payrecon/internal/textutils"
)

var (
	ErrIBANLength   = errors.New("IBAN length out of range")
	ErrIBANChars    = errors.New("IBAN contains invalid characters")
	ErrIBANChecksum = errors.New("IBAN checksum mismatch")
)

var ninetySeven = big.NewInt(97)

// NormalizeIBAN removes whitespace and upper-cases iban.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(textutils.StripWhitespace(iban))
}

// ValidateIBAN checks the structure and ISO 13616 mod-97 checksum of iban.
func ValidateIBAN(iban string) error {
	s := NormalizeIBAN(iban)
	if len(s) < 15 || len(s) > 34 {
		return fmt.Errorf("%w: %d characters", ErrIBANLength, len(s))
	}
	if s[0] < 'A' || s[0] > 'Z' || s[1] < 'A' || s[1] > 'Z' || s[2] < '0' || s[2] > '9' || s[3] < '0' || s[3] > '9' {
		return fmt.Errorf("%w: %s", ErrIBANChars, s[:4])
	}
	numeric, ok := AlphanumericToDigits(s[4:] + s[:4])
	if !ok {
		return ErrIBANChars
	}
	if Mod97(numeric) != 1 {
		return ErrIBANChecksum
	}
	return nil
}

// IsQRIBAN reports whether iban is a Swiss or Liechtenstein QR-IBAN, i.e.
// its institution identifier lies in 30000-31999. QR-IBANs require QR
// references; everything else uses creditor references.
func IsQRIBAN(iban string) bool {
	s := NormalizeIBAN(iban)
	if ValidateIBAN(s) != nil {
		return false
	}
	if !strings.HasPrefix(s, "CH") && !strings.HasPrefix(s, "LI") {
		return false
	}
	iid, err := strconv.Atoi(s[4:9])
	if err != nil {
		return false
	}
	return iid >= 30000 && iid <= 31999
}

// AlphanumericToDigits replaces letters by two digits (A=10 ... Z=35) as
// required by ISO 7064 mod 97-10. It fails on anything but 0-9 and A-Z.
func AlphanumericToDigits(s string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteString(strconv.Itoa(int(r-'A') + 10))
		default:
			return "", false
		}
	}
	return b.String(), true
}

// Mod97 returns digits modulo 97. digits must be a non-empty decimal string.
func Mod97(digits string) int {
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return -1
	}
	return int(new(big.Int).Mod(n, ninetySeven).Int64())
}
