package fuzzy

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/entity"
	"github.com/kailas-cloud/facetdex/internal/domain/search/field"
	"github.com/kailas-cloud/facetdex/internal/domain/search/token"
)

// Similarity is the string similarity collaborator. Implementations must be
// symmetric, bounded to [0, 1] and return 0 when no trigrams are shared.
type Similarity interface {
	Similarity(a, b string) (float64, error)
}

// FieldFetcher returns the current value of an entity attribute.
type FieldFetcher interface {
	FieldValue(ctx context.Context, e entity.Entity, name string) (entity.Value, error)
}

// AttributeFetcher reads values from the entity's own attributes.
type AttributeFetcher struct{}

// FieldValue returns the named attribute.
func (AttributeFetcher) FieldValue(_ context.Context, e entity.Entity, name string) (entity.Value, error) {
	return e.Attribute(name), nil
}

// Query is a tokenized search text. Folded tokens are present only when at
// least one searched field folds diacritics.
type Query struct {
	plain  token.Set
	folded token.Set
}

// Plain returns the unfolded token set.
func (q Query) Plain() token.Set { return q.plain }

// Folded returns the folded token set (empty when no field folds).
func (q Query) Folded() token.Set { return q.folded }

func (q Query) tokensFor(f field.SearchField) []string {
	if f.Folds() {
		return q.folded.Tokens()
	}
	return q.plain.Tokens()
}

// Scorer computes an entity's similarity to a query.
type Scorer struct {
	sim   Similarity
	fetch FieldFetcher
	fold  token.Folder
	// memo caches similarity per (token, text) pair; nil disables caching.
	memo map[[2]string]float64
}

// NewScorer creates a Scorer. fold is required only for folding fields.
func NewScorer(sim Similarity, fetch FieldFetcher, fold token.Folder) *Scorer {
	if fetch == nil {
		fetch = AttributeFetcher{}
	}
	return &Scorer{sim: sim, fetch: fetch, fold: fold}
}

// WithMemo returns a copy of the scorer with a fresh similarity cache. The
// copy is meant for one search call and is not safe for concurrent use.
func (s *Scorer) WithMemo() *Scorer {
	c := *s
	c.memo = make(map[[2]string]float64)
	return &c
}

// Score returns the maximum similarity over all (token, field) pairs. The
// second result is false when no pair could be scored (every field null).
func (s *Scorer) Score(
	ctx context.Context, q Query, fields []field.SearchField, e entity.Entity,
) (float64, bool, error) {
	best, scored := 0.0, false
	for _, f := range fields {
		v, err := s.fetch.FieldValue(ctx, e, f.Name())
		if err != nil {
			return 0, false, domain.Unavailable(fmt.Sprintf("fetch %s of %s", f.Name(), e.ID()), err)
		}
		if v.IsNull() {
			continue
		}
		text := v.Text()
		if f.Folds() {
			if s.fold == nil {
				return 0, false, fmt.Errorf("score %s: diacritic folding requested without a folder", f.Name())
			}
			text = s.fold(text)
		}
		words := splitWords(text)

		for _, tok := range q.tokensFor(f) {
			ps, err := s.pairScore(tok, words)
			if err != nil {
				return 0, false, err
			}
			if !scored || ps > best {
				best, scored = ps, true
			}
		}
	}
	return best, scored, nil
}

// pairScore is the best similarity between tok and any run of consecutive
// field words as long as tok itself.
func (s *Scorer) pairScore(tok string, words []string) (float64, error) {
	width := len(splitWords(tok))
	if width == 0 || len(words) == 0 {
		return 0, nil
	}
	if width >= len(words) {
		return s.similarity(tok, strings.Join(words, " "))
	}

	best := 0.0
	for i := 0; i+width <= len(words) && best < 1; i++ {
		v, err := s.similarity(tok, strings.Join(words[i:i+width], " "))
		if err != nil {
			return 0, err
		}
		best = math.Max(best, v)
	}
	return best, nil
}

func (s *Scorer) similarity(a, b string) (float64, error) {
	key := [2]string{a, b}
	if v, ok := s.memo[key]; ok {
		return v, nil
	}
	v, err := s.sim.Similarity(a, b)
	if err != nil {
		return 0, domain.Unavailable("similarity", err)
	}
	if math.IsNaN(v) || v < 0 || v > 1 {
		return 0, domain.Unavailable("similarity", fmt.Errorf("score %v out of range", v))
	}
	if s.memo != nil {
		s.memo[key] = v
	}
	return v, nil
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
