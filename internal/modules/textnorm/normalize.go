package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize prepares a string for comparison: decomposes, strips combining
// diacritical marks, lowercases and trims (e.g. "  Añillo " -> "anillo").
// Total function: empty input yields "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	result, _, err := transform.String(stripAccents, strings.ToLower(s))
	if err != nil {
		return strings.TrimSpace(strings.ToLower(s))
	}
	return strings.TrimSpace(result)
}
