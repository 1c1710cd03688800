package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeSpaces trims s and collapses every whitespace run to one space.
func NormalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FoldText lower-cases s, strips combining marks ("é" -> "e", "ñ" -> "n")
// and collapses whitespace. Keyword tables are stored in folded form.
func FoldText(s string) string {
	// transformers carry state and are not safe to share
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return NormalizeSpaces(strings.ToLower(folded))
}

// Capitalize title-cases every word of s ("light blue" -> "Light Blue").
func Capitalize(s string) string {
	return cases.Title(language.Und).String(s)
}
