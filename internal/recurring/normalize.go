// Package recurring detects recurring payment series in a user's transactions.
//
// Everything in this package is a pure function over plain data: it never
// touches storage and never mutates its inputs. The stateful parts of the
// suggestion lifecycle live in the engine and suggestion packages.
package recurring

import (
	"regexp"
	"strings"
)

// nonKeyChars matches runs of characters that do not participate in a grouping key.
var nonKeyChars = regexp.MustCompile(`[^a-z0-9а-яё]+`)

// Normalize canonicalizes a free-text description for use as a grouping key.
// The result is lowercase, keeps only Latin letters, Cyrillic letters and
// digits, and separates words with single spaces.
func Normalize(description string) string {
	lowered := strings.ToLower(description)
	return strings.TrimSpace(nonKeyChars.ReplaceAllString(lowered, " "))
}
