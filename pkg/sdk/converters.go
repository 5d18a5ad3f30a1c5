package facetdex

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/category"
	"github.com/kailas-cloud/facetdex/internal/domain/entity"
	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	"github.com/kailas-cloud/facetdex/internal/domain/search/filter"
	"github.com/kailas-cloud/facetdex/internal/domain/search/request"
	searchuc "github.com/kailas-cloud/facetdex/internal/usecase/search"
)

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }

func toEntity(w *Work) (entity.Entity, error) {
	attrs := make(map[string]entity.Value, len(w.Attributes)+len(w.Lists))
	for k, v := range w.Attributes {
		attrs[k] = entity.Scalar(v)
	}
	for k, v := range w.Lists {
		if _, dup := attrs[k]; dup {
			return entity.Entity{}, fmt.Errorf("%w: attribute %q is both single and list", domain.ErrInvalidRequest, k)
		}
		attrs[k] = entity.List(v...)
	}
	cats := make([]category.Tag, len(w.Categories))
	for i, t := range w.Categories {
		cats[i] = toTag(t)
	}
	e, err := entity.New(w.ID, attrs, w.Numerics, cats)
	if err != nil {
		return entity.Entity{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return e, nil
}

func fromEntity(e *entity.Entity) Work {
	w := Work{ID: e.ID(), Numerics: e.Numerics()}
	for k, v := range e.Attributes() {
		switch {
		case v.IsNull():
		case v.IsList():
			if w.Lists == nil {
				w.Lists = make(map[string][]string)
			}
			w.Lists[k] = v.Items()
		default:
			if w.Attributes == nil {
				w.Attributes = make(map[string]string)
			}
			w.Attributes[k] = v.Text()
		}
	}
	for _, t := range e.Categories() {
		w.Categories = append(w.Categories, fromTag(t))
	}
	return w
}

func toRequest(p SearchParams) (request.Request, error) {
	names := make([]string, 0, len(p.Facets))
	for name := range p.Facets {
		names = append(names, name)
	}
	sort.Strings(names)

	conds := make([]filter.Condition, 0, len(names))
	for _, name := range names {
		c, err := filter.NewMatch(name, p.Facets[name]...)
		if err != nil {
			return request.Request{}, err //nolint:wrapcheck // domain sentinel
		}
		conds = append(conds, c)
	}

	var years *filter.Range
	if p.StartYear != nil || p.EndYear != nil {
		r, err := filter.NewRangeFilter(yearBound(p.StartYear), yearBound(p.EndYear))
		if err != nil {
			return request.Request{}, err //nolint:wrapcheck // domain sentinel
		}
		years = &r
	}

	expr, err := filter.NewExpression(conds, years)
	if err != nil {
		return request.Request{}, err //nolint:wrapcheck // domain sentinel
	}
	if p.Limit < 0 {
		return request.Request{}, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidRequest)
	}
	return request.New(p.Query, expr, p.Limit, p.Offset, p.Threshold) //nolint:wrapcheck // domain sentinel
}

func yearBound(y *int) *float64 {
	if y == nil {
		return nil
	}
	f := float64(*y)
	return &f
}

func fromPage(p *searchuc.Page) SearchResult {
	hits := make([]Hit, len(p.Results))
	for i := range p.Results {
		hits[i] = Hit{Work: fromEntity(&p.Results[i].Entity), Score: p.Results[i].Score}
	}

	flat := make(map[string][]FacetValue, len(p.Facets.Flat))
	for name, values := range p.Facets.Flat {
		out := make([]FacetValue, len(values))
		for i, v := range values {
			out[i] = FacetValue{Key: v.Key, Count: v.Count}
		}
		flat[name] = out
	}

	return SearchResult{
		Count:         p.Count,
		Limit:         p.Limit,
		Offset:        p.Offset,
		Hits:          hits,
		Facets:        flat,
		HierarchyName: p.Facets.HierarchyName,
		Hierarchy:     fromNodes(p.Facets.Hierarchy),
	}
}

func fromNodes(nodes []*facet.Node) []FacetNode {
	out := make([]FacetNode, len(nodes))
	for i, n := range nodes {
		out[i] = FacetNode{
			ID:       n.ID,
			Label:    n.Label,
			Count:    n.TotalCount,
			Children: fromNodes(n.Children),
		}
	}
	return out
}
