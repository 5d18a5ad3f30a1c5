package search

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/category"
	"github.com/kailas-cloud/facetdex/internal/domain/entity"
	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	"github.com/kailas-cloud/facetdex/internal/domain/search/field"
	"github.com/kailas-cloud/facetdex/internal/domain/search/filter"
	"github.com/kailas-cloud/facetdex/internal/domain/search/fuzzy"
	"github.com/kailas-cloud/facetdex/internal/domain/search/mode"
	"github.com/kailas-cloud/facetdex/internal/domain/search/request"
)

// Hit is one entity of a page. Score is set in fuzzy mode only.
type Hit struct {
	Entity entity.Entity
	Score  *float64
}

// Facets holds the facet summaries of the whole filtered result set.
type Facets struct {
	// Flat maps each configured attribute to its buckets.
	Flat map[string][]facet.Value
	// HierarchyName is the key the category forest is published under.
	HierarchyName string
	Hierarchy     []*facet.Node
}

// Page is one page of a browse or search result.
type Page struct {
	Mode mode.Mode
	// Candidates is the number of entities that passed the filters.
	Candidates int
	Count      int
	Limit      int
	Offset     int
	Results    []Hit
	Facets     Facets
}

// Service filters, ranks, facets and pages catalog entities.
type Service struct {
	catalog      CandidateLister
	ancestors    AncestorResolver
	ranker       Ranker
	fields       []field.SearchField
	threshold    float64
	flatFacets   []string
	hierarchy    string
	ordering     []string
	locale       language.Tag
	maxPageSize  int
	defaultLimit int
}

// New creates a search service. fields are the attributes the fuzzy ranker
// scores against.
func New(
	catalog CandidateLister, ancestors AncestorResolver, ranker Ranker, fields []field.SearchField,
) *Service {
	return &Service{
		catalog:      catalog,
		ancestors:    ancestors,
		ranker:       ranker,
		fields:       slices.Clone(fields),
		threshold:    fuzzy.DefaultThreshold,
		hierarchy:    "work_type",
		ordering:     []string{"title", "subtitle"},
		locale:       language.German,
		defaultLimit: request.DefaultLimit,
		maxPageSize:  request.MaxLimit,
	}
}

// WithThreshold sets the default similarity threshold.
func (s *Service) WithThreshold(t float64) *Service {
	if t >= 0 && t <= 1 {
		s.threshold = t
	}
	return s
}

// WithFacets configures the flat facet attributes and the name of the
// hierarchical facet. An empty hierarchy name disables it.
func (s *Service) WithFacets(flat []string, hierarchy string) *Service {
	s.flatFacets = slices.Clone(flat)
	s.hierarchy = hierarchy
	return s
}

// WithOrdering configures the browse-mode sort attributes and collation locale.
func (s *Service) WithOrdering(locale language.Tag, attrs ...string) *Service {
	s.locale = locale
	if len(attrs) > 0 {
		s.ordering = slices.Clone(attrs)
	}
	return s
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultLimit = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Search runs a browse (no search text) or fuzzy search request. Facets are
// computed over every matching entity, not just the returned page.
func (s *Service) Search(ctx context.Context, req *request.Request) (Page, error) {
	if err := s.validateFilters(req.Filters()); err != nil {
		return Page{}, err
	}

	all, err := s.catalog.ListCandidates(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("list candidates: %w", err)
	}

	matched := make([]entity.Entity, 0, len(all))
	for i := range all {
		if req.Filters().Matches(all[i]) {
			matched = append(matched, all[i])
		}
	}

	hits, err := s.order(ctx, req, matched)
	if err != nil {
		return Page{}, err
	}

	facets, err := s.facets(ctx, hits)
	if err != nil {
		return Page{}, err
	}

	limit := req.Limit()
	if !req.LimitSet() {
		limit = s.defaultLimit
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	return Page{
		Mode:       req.Mode(),
		Candidates: len(matched),
		Count:      len(hits),
		Limit:      limit,
		Offset:     req.Offset(),
		Results:    paginate(hits, req.Offset(), limit),
		Facets:     facets,
	}, nil
}

func (s *Service) validateFilters(expr filter.Expression) error {
	for _, c := range expr.Facets() {
		if !slices.Contains(s.flatFacets, c.Key()) {
			return fmt.Errorf("%w: unknown facet %q", domain.ErrInvalidRequest, c.Key())
		}
	}
	return nil
}

func (s *Service) order(ctx context.Context, req *request.Request, matched []entity.Entity) ([]Hit, error) {
	query, ok := req.Query()
	if !ok {
		return s.browse(matched), nil
	}

	threshold := s.threshold
	if t, ok := req.Threshold(); ok {
		threshold = t
	}
	ranked, err := s.ranker.Search(ctx, query, s.fields, threshold, matched)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	hits := make([]Hit, len(ranked))
	for i := range ranked {
		score := ranked[i].Score()
		hits[i] = Hit{Entity: ranked[i].Entity(), Score: &score}
	}
	return hits, nil
}

// browse orders entities by the ordering attributes using the configured
// collation, null values last. Ties keep repository order.
func (s *Service) browse(matched []entity.Entity) []Hit {
	hits := make([]Hit, len(matched))
	for i := range matched {
		hits[i] = Hit{Entity: matched[i]}
	}

	col := collate.New(s.locale)
	sort.SliceStable(hits, func(i, j int) bool {
		for _, attr := range s.ordering {
			a := hits[i].Entity.Attribute(attr)
			b := hits[j].Entity.Attribute(attr)
			if a.IsNull() || b.IsNull() {
				if a.IsNull() != b.IsNull() {
					return b.IsNull()
				}
				continue
			}
			if c := col.CompareString(a.Text(), b.Text()); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return hits
}

func (s *Service) facets(ctx context.Context, hits []Hit) (Facets, error) {
	flat := make([][]facet.Value, len(s.flatFacets))
	var forest []*facet.Node

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range s.flatFacets {
		g.Go(func() error {
			values := make([]entity.Value, len(hits))
			for j := range hits {
				values[j] = hits[j].Entity.Attribute(name)
			}
			flat[i] = facet.AggregateFlat(values)
			return nil
		})
	}
	if s.hierarchy != "" {
		g.Go(func() error {
			var tags []category.Tag
			for j := range hits {
				tags = append(tags, hits[j].Entity.Categories()...)
			}
			var err error
			forest, err = facet.AggregateHierarchy(gctx, tags, s.ancestors)
			if err != nil {
				return fmt.Errorf("facet %s: %w", s.hierarchy, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Facets{}, err //nolint:wrapcheck // already wrapped per facet
	}

	out := Facets{
		Flat:          make(map[string][]facet.Value, len(s.flatFacets)),
		HierarchyName: s.hierarchy,
		Hierarchy:     forest,
	}
	for i, name := range s.flatFacets {
		out.Flat[name] = flat[i]
	}
	return out, nil
}

func paginate(hits []Hit, offset, limit int) []Hit {
	if offset >= len(hits) {
		return []Hit{}
	}
	end := offset + limit
	if end > len(hits) {
		end = len(hits)
	}
	return hits[offset:end]
}
