// Package strutil is the one shared normalization utility for user-supplied
// and stored strings. Every place a status or display string is compared
// goes through these helpers instead of trimming inline.
package strutil

import "strings"

// Safe trims surrounding whitespace. Empty stays empty.
func Safe(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeStatus lower-cases and trims a status value before comparison,
// so "Trial ", "TRIAL" and "trial" compare equal.
func NormalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeEmail canonicalizes an email for lookups.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
