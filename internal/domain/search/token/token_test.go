package token

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/textsim/unaccent"
)

func mustTokenize(t *testing.T, query string, fold bool) Set {
	t.Helper()
	s, err := NewTokenizer(unaccent.Fold).Tokenize(query, fold)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", query, err)
	}
	return s
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"single word", "Sommer", []string{"Sommer"}},
		{"two words", "Der Sommer", []string{"Der", "Sommer", "Der Sommer"}},
		{"double quoted phrase", `"New York" City`, []string{"New York", "City", `"New York" City`}},
		{"single quoted phrase", `'New York' City`, []string{"New York", "City", `'New York' City`}},
		{"duplicates collapse", "rot rot", []string{"rot", "rot rot"}},
		{"surrounding whitespace kept in whole query", "  Traum ", []string{"Traum", "  Traum "}},
		{"tabs and newlines separate", "a\tb\nc", []string{"a", "b", "c", "a\tb\nc"}},
		{"unmatched quote separates", `say "hello`, []string{"say", "hello", `say "hello`}},
		{"quote inside word", `foo"bar baz"`, []string{`foo"bar baz"`}},
		{"empty quoted span dropped", `"" Roman`, []string{"Roman", `"" Roman`}},
		{"phrase padded inside quotes", `"  Prosa  "`, []string{"Prosa", `"  Prosa  "`}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mustTokenize(t, tc.query, false).Tokens()
			if !slices.Equal(got, tc.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tc.query, got, tc.want)
			}
		})
	}
}

func TestTokenize_InvalidQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n", `""`, `'' ""`} {
		_, err := NewTokenizer(nil).Tokenize(q, false)
		if !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("Tokenize(%q): expected ErrInvalidQuery, got %v", q, err)
		}
	}
}

func TestTokenize_FoldDiacritics(t *testing.T) {
	folded := mustTokenize(t, "Mörike Gedichte", true)
	if !slices.Equal(folded.Tokens(), []string{"Morike", "Gedichte", "Morike Gedichte"}) {
		t.Errorf("unexpected folded tokens %q", folded.Tokens())
	}

	plain := mustTokenize(t, "Mörike", false)
	if !plain.Contains("Mörike") || plain.Contains("Morike") {
		t.Errorf("tokens must not be folded without the flag: %q", plain.Tokens())
	}
}

func TestTokenize_FoldCollapsesVariants(t *testing.T) {
	got := mustTokenize(t, "Mörike Morike", true).Tokens()
	if !slices.Equal(got, []string{"Morike", "Morike Morike"}) {
		t.Errorf("unexpected tokens %q", got)
	}
}

func TestTokenize_FoldWithoutFolder(t *testing.T) {
	_, err := NewTokenizer(nil).Tokenize("Mörike", true)
	if err == nil {
		t.Fatal("expected error when folding is requested without a folder")
	}
	if errors.Is(err, domain.ErrInvalidQuery) {
		t.Error("configuration error must not look like an invalid query")
	}
}

func TestTokenize_Idempotent(t *testing.T) {
	queries := []string{"Sommer", "Der  Sommer", " Traum und Wirklichkeit ", "a b a"}
	for _, q := range queries {
		first := mustTokenize(t, q, false)
		again := mustTokenize(t, first.Render(), false)
		if !slices.Equal(first.Tokens(), again.Tokens()) {
			t.Errorf("%q: %q != %q", q, first.Tokens(), again.Tokens())
		}
	}
}

func TestTokenize_PartsNeverContainOuterQuotes(t *testing.T) {
	s := mustTokenize(t, `"Die Klosterschule" 'Tage und Jahre'`, false)
	for _, tok := range s.Tokens()[:2] {
		if strings.HasPrefix(tok, `"`) || strings.HasPrefix(tok, `'`) {
			t.Errorf("token %q still quoted", tok)
		}
	}
	if s.Len() != 3 {
		t.Errorf("expected 3 tokens, got %d", s.Len())
	}
}
