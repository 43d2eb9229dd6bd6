// Package currencyutils converts between decimal amounts as printed on bank
// statements and the integer minor units stored by the reconciliation core.
package currencyutils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrAmountOutOfRange is returned for amounts whose minor units do not fit
// in an int64.
var ErrAmountOutOfRange = errors.New("amount out of range")

var (
	hundred        = decimal.NewFromInt(100)
	currencyAffix  = regexp.MustCompile(`^[A-Za-z]{3}\s*|\s*[A-Za-z]{3}$`)
	currencySymbol = regexp.MustCompile(`[€$£¥₣\s]`)
)

// ParseAmount parses an amount such as "1'234.50", "CHF 99.95", "1.234,56" or "12,5".
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// StandardizeAmount strips currency codes, symbols and thousands separators
// and normalises the decimal separator to '.'.
func StandardizeAmount(amountStr string) string {
	s := strings.TrimSpace(amountStr)
	s = currencyAffix.ReplaceAllString(s, "")
	s = currencySymbol.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "")

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		if strings.LastIndex(s, ".") < strings.LastIndex(s, ",") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Contains(s, ","):
		parts := strings.Split(s, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	return strings.TrimSuffix(s, ".")
}

// ToMinorUnits multiplies by 100 and rounds half away from zero.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	minor := amount.Mul(hundred).Round(0).BigInt()
	if !minor.IsInt64() {
		return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, amount.String())
	}
	return minor.Int64(), nil
}

// ParseMinorUnits parses amountStr and converts it to minor units.
func ParseMinorUnits(amountStr string) (int64, error) {
	amount, err := ParseAmount(amountStr)
	if err != nil {
		return 0, err
	}
	return ToMinorUnits(amount)
}

// FromMinorUnits converts minor units back to a decimal amount.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// FormatMinor renders minor units with two decimals, e.g. 10050 -> "100.50".
func FormatMinor(minor int64) string {
	return FromMinorUnits(minor).StringFixed(2)
}

// FormatAmount renders minor units with a currency prefix, e.g. "CHF 100.50".
func FormatAmount(minor int64, currency string) string {
	if currency == "" {
		return FormatMinor(minor)
	}
	return currency + " " + FormatMinor(minor)
}
