// Package dateutils parses statement dates and compares them as calendar
// days. All dates produced here are midnight UTC.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutSwiss    = "02.01.2006"
	DateLayoutSlash    = "02/01/2006"
	DateLayoutISOSlash = "2006/01/02"
	DateLayoutDateTime = "2006-01-02T15:04:05"
	DateLayoutFull     = "2006-01-02 15:04:05"
)

// CommonFormats is tried in order by ParseDate. Day-first layouts win over
// month-first ones; statements handled here come from European banks.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutSwiss,
	DateLayoutSlash,
	DateLayoutISOSlash,
	DateLayoutDateTime,
	DateLayoutFull,
	time.RFC3339,
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	yymmdd     = regexp.MustCompile(`^\d{6}$`)
)

// ParseDate parses dateStr with the first matching layout and returns the
// calendar date together with the layout that matched.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)
	if dateStr == "" {
		return time.Time{}, "", fmt.Errorf("empty date")
	}
	for _, layout := range CommonFormats {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return DateOnly(t), layout, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// ParseISODate parses a strict YYYY-MM-DD date.
func ParseISODate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayoutISO, strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// ExpandYYMMDD turns a six digit statement date into a full date. The
// century is always 20.
func ExpandYYMMDD(s string) (time.Time, error) {
	if !yymmdd.MatchString(s) {
		return time.Time{}, fmt.Errorf("expected YYMMDD, got %q", s)
	}
	t, err := time.Parse(DateLayoutISO, "20"+s[0:2]+"-"+s[2:4]+"-"+s[4:6])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// CleanDateString trims and collapses whitespace.
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// DateOnly drops the clock part, keeping the calendar date as seen in t's
// own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the absolute number of calendar days between a and b.
func DaysBetween(a, b time.Time) int {
	diff := DateOnly(a).Sub(DateOnly(b))
	if diff < 0 {
		diff = -diff
	}
	return int(diff / (24 * time.Hour))
}

// WithinDays reports whether a and b are at most days calendar days apart.
func WithinDays(a, b time.Time, days int) bool {
	return DaysBetween(a, b) <= days
}

// ToISODate formats date as YYYY-MM-DD.
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}
