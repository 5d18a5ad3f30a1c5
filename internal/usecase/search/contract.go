package search

import (
	"context"

	"github.com/kailas-cloud/facetdex/internal/domain/category"
	"github.com/kailas-cloud/facetdex/internal/domain/entity"
	"github.com/kailas-cloud/facetdex/internal/domain/search/field"
	"github.com/kailas-cloud/facetdex/internal/domain/search/result"
)

// CandidateLister loads the entities a query runs against.
type CandidateLister interface {
	ListCandidates(ctx context.Context) ([]entity.Entity, error)
}

// AncestorResolver looks up categories for the hierarchical facet.
type AncestorResolver interface {
	ResolveAncestor(ctx context.Context, id int64) (category.Tag, error)
}

// Ranker scores and orders candidates by similarity to a query.
type Ranker interface {
	Search(
		ctx context.Context, query string, fields []field.SearchField,
		threshold float64, candidates []entity.Entity,
	) ([]result.Ranked, error)
}
