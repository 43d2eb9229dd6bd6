// Package textutils holds the text clean-up and pattern extraction used on
// statement remittance fields.
package textutils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// Printed QR references: 27 digits, often grouped "21 00000 00003 13947 14300 09017".
	qrrCandidate = regexp.MustCompile(`\b\d{2}(?: ?\d{5}){5}\b`)
	// Creditor references: RF, two check digits and up to 21 alphanumerics,
	// either unbroken or printed in blocks of four.
	rfCandidate = regexp.MustCompile(`\bRF\d{2}(?:[A-Z0-9]{1,21}|(?: [A-Z0-9]{4})*(?: [A-Z0-9]{1,4}))\b`)
	spaces      = regexp.MustCompile(`\s+`)
)

// StripWhitespace removes every whitespace rune from s.
func StripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// CleanText trims s and collapses inner whitespace runs to a single space.
func CleanText(s string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ReferenceCandidates returns substrings of text that look like payment
// references, whitespace removed, in order of appearance. Creditor
// references come first since they are self-identifying. The caller is
// expected to verify the check digits.
func ReferenceCandidates(text string) []string {
	upper := strings.ToUpper(text)
	var out []string
	for _, m := range rfCandidate.FindAllString(upper, -1) {
		out = append(out, StripWhitespace(m))
	}
	for _, m := range qrrCandidate.FindAllString(text, -1) {
		out = append(out, StripWhitespace(m))
	}
	return out
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
