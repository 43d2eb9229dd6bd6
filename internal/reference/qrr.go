// Package reference generates and validates the structured payment
// references printed on invoices: 27-digit QR references (recursive mod 10)
// and ISO 11649 creditor references (mod 97).
package reference

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fjacquet/payrecon/internal/textutils"

	"github.com/google/uuid"
)

const (
	// QRRLength is the length of a QR reference including its check digit.
	QRRLength = 27

	qrrBodyLength = QRRLength - 1
	tenantDigits  = 10
	qrrSeqDigits  = qrrBodyLength - tenantDigits
)

var (
	ErrInvalidReference   = errors.New("invalid payment reference")
	ErrSequenceOutOfRange = errors.New("invoice sequence out of range")
)

// carryTable drives the recursive modulo-10 check digit.
var carryTable = [10]int{0, 9, 4, 6, 8, 2, 7, 1, 3, 5}

// tenantNamespace scopes the name-based UUIDs used to turn arbitrary tenant
// identifiers into digits.
var tenantNamespace = uuid.NameSpaceOID

// QRRCheckDigit computes the recursive mod-10 check digit of a digit string.
func QRRCheckDigit(body string) (int, error) {
	carry := 0
	for i, r := range body {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: non-digit %q at position %d", ErrInvalidReference, r, i)
		}
		carry = carryTable[(carry+int(r-'0'))%10]
	}
	return (10 - carry) % 10, nil
}

// TenantDigits maps a tenant identifier to a fixed ten digit block. Purely
// numeric identifiers of up to ten digits are used as is; anything else is
// hashed through a name-based UUID so the mapping stays stable across runs.
func TenantDigits(tenantID string) string {
	if tenantID != "" && len(tenantID) <= tenantDigits && isDigits(tenantID) {
		return leftPad(tenantID, tenantDigits)
	}
	id := uuid.NewSHA1(tenantNamespace, []byte(tenantID))
	n := binary.BigEndian.Uint64(id[:8]) % 10_000_000_000
	return leftPad(strconv.FormatUint(n, 10), tenantDigits)
}

// GenerateQRR returns the 27 digit QR reference for the tenant's invoice
// sequence number: ten tenant digits, the sequence left-padded to sixteen
// digits and the check digit.
func GenerateQRR(tenantID string, sequence int64) (string, error) {
	seq, err := formatSequence(sequence, qrrSeqDigits)
	if err != nil {
		return "", err
	}
	body := TenantDigits(tenantID) + seq
	check, err := QRRCheckDigit(body)
	if err != nil {
		return "", err
	}
	return body + strconv.Itoa(check), nil
}

// ValidateQRR checks length, digits and check digit. Whitespace is ignored.
func ValidateQRR(ref string) error {
	s := textutils.StripWhitespace(ref)
	if len(s) != QRRLength {
		return fmt.Errorf("%w: QR reference must have %d digits, got %d", ErrInvalidReference, QRRLength, len(s))
	}
	check, err := QRRCheckDigit(s[:qrrBodyLength])
	if err != nil {
		return err
	}
	if int(s[qrrBodyLength]-'0') != check {
		return fmt.Errorf("%w: QR reference check digit mismatch", ErrInvalidReference)
	}
	return nil
}

// FormatQRR groups a QR reference for printing: 2 digits then blocks of 5.
func FormatQRR(ref string) string {
	s := textutils.StripWhitespace(ref)
	if len(s) != QRRLength {
		return ref
	}
	parts := []string{s[:2]}
	for i := 2; i < len(s); i += 5 {
		parts = append(parts, s[i:i+5])
	}
	return strings.Join(parts, " ")
}

func formatSequence(sequence int64, width int) (string, error) {
	if sequence < 1 {
		return "", fmt.Errorf("%w: %d", ErrSequenceOutOfRange, sequence)
	}
	s := strconv.FormatInt(sequence, 10)
	if len(s) > width {
		return "", fmt.Errorf("%w: %d exceeds %d digits", ErrSequenceOutOfRange, sequence, width)
	}
	return leftPad(s, width), nil
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
