// Package fuzzy ranks entities by trigram similarity to a free-form query.
//
// A query expands to a token set (see package token). Every token is scored
// against every configured field and an entity keeps its single best score;
// entities below the threshold are dropped and the rest are ordered by score,
// keeping input order on ties.
package fuzzy

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/entity"
	"github.com/kailas-cloud/facetdex/internal/domain/search/field"
	"github.com/kailas-cloud/facetdex/internal/domain/search/result"
	"github.com/kailas-cloud/facetdex/internal/domain/search/token"
)

// DefaultThreshold is the minimum similarity for an entity to match.
const DefaultThreshold = 0.4

// Engine orchestrates tokenizing, scoring and ranking. It holds no per-call
// state and is safe for concurrent use when its collaborators are.
type Engine struct {
	tokenizer  *token.Tokenizer
	scorer     *Scorer
	alwaysFold bool
}

// NewEngine creates an Engine from its collaborators.
func NewEngine(sim Similarity, fetch FieldFetcher, fold token.Folder) *Engine {
	return &Engine{
		tokenizer: token.NewTokenizer(fold),
		scorer:    NewScorer(sim, fetch, fold),
	}
}

// WithAlwaysFold returns a copy of the engine that folds diacritics on every
// field regardless of its preprocessing.
func (e *Engine) WithAlwaysFold(on bool) *Engine {
	c := *e
	c.alwaysFold = on
	return &c
}

// Prepare tokenizes query for the given fields.
func (e *Engine) Prepare(query string, fields []field.SearchField) (Query, error) {
	plain, err := e.tokenizer.Tokenize(query, false)
	if err != nil {
		return Query{}, fmt.Errorf("tokenize: %w", err)
	}
	q := Query{plain: plain}
	for _, f := range fields {
		if f.Folds() {
			if q.folded, err = e.tokenizer.Tokenize(query, true); err != nil {
				return Query{}, fmt.Errorf("tokenize: %w", err)
			}
			break
		}
	}
	return q, nil
}

// Search scores every candidate and returns those at or above threshold,
// best first. Cancellation is checked between candidates. The call either
// returns the full ranking or an error; candidates are never modified.
func (e *Engine) Search(
	ctx context.Context, query string, fields []field.SearchField,
	threshold float64, candidates []entity.Entity,
) ([]result.Ranked, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no search fields", domain.ErrInvalidRequest)
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: threshold must be between 0 and 1", domain.ErrInvalidRequest)
	}

	if e.alwaysFold {
		fields = foldAll(fields)
	}
	q, err := e.Prepare(query, fields)
	if err != nil {
		return nil, err
	}

	scorer := e.scorer.WithMemo()
	ranked := make([]result.Ranked, 0)
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		score, ok, err := scorer.Score(ctx, q, fields, candidates[i])
		if err != nil {
			return nil, err
		}
		if !ok || score < threshold {
			continue
		}
		ranked = append(ranked, result.New(candidates[i], score))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})
	return ranked, nil
}

func foldAll(fields []field.SearchField) []field.SearchField {
	out := make([]field.SearchField, len(fields))
	for i, f := range fields {
		out[i] = field.MustNew(f.Name(), field.FoldDiacritics)
	}
	return out
}
