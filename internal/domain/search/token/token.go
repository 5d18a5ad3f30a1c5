// Package token splits free-form search text into search tokens.
//
// Whitespace separates tokens except inside a single- or double-quoted span,
// which forms one inseparable token with its outer quotes removed. The
// original query is always kept as an extra token so that a whole-string
// match is attempted alongside its parts.
package token

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/kailas-cloud/facetdex/internal/domain"
)

// Folder removes diacritics from a token.
type Folder func(string) string

// Set is an ordered set of tokens: parts in order of appearance, then the
// original query unless it duplicates a part.
type Set struct {
	query  string
	tokens []string
}

// Tokens returns the tokens in order.
func (s Set) Tokens() []string { return s.tokens }

// Len returns the number of distinct tokens.
func (s Set) Len() int { return len(s.tokens) }

// Contains reports whether tok is in the set.
func (s Set) Contains(tok string) bool { return slices.Contains(s.tokens, tok) }

// Render returns the query the set was built from.
func (s Set) Render() string { return s.query }

// Tokenizer splits queries, optionally folding diacritics.
type Tokenizer struct {
	fold Folder
}

// NewTokenizer creates a Tokenizer. fold may be nil when folding is never requested.
func NewTokenizer(fold Folder) *Tokenizer {
	return &Tokenizer{fold: fold}
}

// Tokenize splits query into a token set. Folding, when requested, is applied
// to every token after splitting. Empty or whitespace-only queries, and
// queries without any non-empty part, return domain.ErrInvalidQuery.
func (t *Tokenizer) Tokenize(query string, foldDiacritics bool) (Set, error) {
	if strings.TrimSpace(query) == "" {
		return Set{}, fmt.Errorf("%w: search text is empty", domain.ErrInvalidQuery)
	}
	if foldDiacritics && t.fold == nil {
		return Set{}, fmt.Errorf("tokenize: diacritic folding requested without a folder")
	}

	var parts []string
	for _, p := range split(query) {
		p = strings.TrimSpace(unquote(p))
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return Set{}, fmt.Errorf("%w: search text has no terms", domain.ErrInvalidQuery)
	}

	set := Set{query: query}
	for _, tok := range append(parts, query) {
		if foldDiacritics {
			tok = t.fold(tok)
		}
		if !set.Contains(tok) {
			set.tokens = append(set.tokens, tok)
		}
	}
	return set, nil
}

// split cuts query on whitespace outside quoted spans. A quote opens a span
// only when the same quote character closes it later; a lone quote separates.
func split(query string) []string {
	r := []rune(query)
	var parts []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(r); i++ {
		c := r[i]
		switch {
		case isQuote(c):
			end := slices.Index(r[i+1:], c)
			if end < 0 {
				flush()
				continue
			}
			cur.WriteString(string(r[i : i+end+2]))
			i += end + 1
		case unicode.IsSpace(c):
			flush()
		default:
			cur.WriteRune(c)
		}
	}
	flush()
	return parts
}

func unquote(s string) string {
	r := []rune(s)
	if len(r) >= 2 && isQuote(r[0]) && r[len(r)-1] == r[0] {
		return string(r[1 : len(r)-1])
	}
	return s
}

func isQuote(r rune) bool { return r == '"' || r == '\'' }
