// Package unaccent folds diacritics: NFKD decomposition followed by removal of
// non-spacing combining marks ("Mörike" -> "Morike").
package unaccent

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold returns s with diacritics removed. Input that cannot be transformed is
// returned unchanged.
func Fold(s string) string {
	// transform.Chain keeps per-run state, so each call builds its own.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
