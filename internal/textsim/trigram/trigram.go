// Package trigram implements trigram string similarity with the semantics of
// PostgreSQL's pg_trgm extension: text is lower-cased and split into words on
// non-alphanumeric runes, every word is padded with two leading blanks and one
// trailing blank, and similarity is the Jaccard index of the trigram sets.
package trigram

import (
	"strings"
	"unicode"
)

// Measure is the default similarity collaborator for the fuzzy engine.
type Measure struct{}

// Similarity returns the trigram similarity of a and b. It never fails.
func (Measure) Similarity(a, b string) (float64, error) {
	return Similarity(a, b), nil
}

// Similarity returns |T(a) ∩ T(b)| / |T(a) ∪ T(b)|, or 0 when either side has
// no trigrams. The result is symmetric and bounded to [0, 1].
func Similarity(a, b string) float64 {
	ta, tb := Trigrams(a), Trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(ta)+len(tb)-shared)
}

// Trigrams returns the padded trigram set of s.
func Trigrams(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range Words(strings.ToLower(s)) {
		r := []rune("  " + w + " ")
		for i := 0; i+3 <= len(r); i++ {
			set[string(r[i:i+3])] = struct{}{}
		}
	}
	return set
}

// Words splits s on runs of runes that are neither letters nor digits.
func Words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
