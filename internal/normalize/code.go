// Package normalize derives stable ASCII identifier codes and display sort
// ranks from free-text supplier labels.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and removes combining marks, so accented
// characters reduce to their ASCII base letter.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeCode converts arbitrary supplier text (color and size names) into a
// stable uppercase ASCII code: diacritics stripped, every run of
// non-alphanumeric characters collapsed to a single underscore, leading and
// trailing separators trimmed. Returns fallback when nothing survives.
// Idempotent: SanitizeCode(SanitizeCode(x, f), f) == SanitizeCode(x, f).
func SanitizeCode(input, fallback string) string {
	s, _, err := transform.String(stripMarks, input)
	if err != nil {
		s = input
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			r -= 'a' - 'A'
			fallthrough
		case r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}

	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}
