// Package filter narrows the candidate set before ranking and faceting.
package filter

import (
	"fmt"

	"golang.org/x/text/cases"

	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/entity"
)

// Filter limits.
const (
	MaxFacetConditions = 32
	MaxValuesPerFacet  = 32
)

// Numeric attributes holding an entity's year span.
const (
	MinYearAttr = "min_year"
	MaxYearAttr = "max_year"
)

// Expression is a conjunction of facet conditions and an optional year range.
type Expression struct {
	facets []Condition
	years  *Range
}

// NewExpression validates and creates a filter Expression.
func NewExpression(facets []Condition, years *Range) (Expression, error) {
	if len(facets) > MaxFacetConditions {
		return Expression{}, fmt.Errorf("%w: too many facet filters (max %d)",
			domain.ErrInvalidRequest, MaxFacetConditions)
	}
	seen := make(map[string]bool, len(facets))
	for _, c := range facets {
		if seen[c.key] {
			return Expression{}, fmt.Errorf("%w: duplicate facet filter %q", domain.ErrInvalidRequest, c.key)
		}
		seen[c.key] = true
	}
	return Expression{facets: facets, years: years}, nil
}

// Facets returns the facet conditions.
func (e Expression) Facets() []Condition { return e.facets }

// Years returns the year range or nil.
func (e Expression) Years() *Range { return e.years }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.facets) == 0 && e.years == nil
}

// Matches reports whether ent satisfies every condition.
func (e Expression) Matches(ent entity.Entity) bool {
	for _, c := range e.facets {
		if !c.Matches(ent.Attribute(c.key)) {
			return false
		}
	}
	if e.years == nil {
		return true
	}
	lo, hasLo := ent.Numeric(MinYearAttr)
	hi, hasHi := ent.Numeric(MaxYearAttr)
	switch {
	case !hasLo && !hasHi:
		return false
	case !hasLo:
		lo = hi
	case !hasHi:
		hi = lo
	}
	return e.years.Overlaps(lo, hi)
}

// Condition is a multi-select facet filter: the attribute must carry at least
// one of the selected values, compared case-insensitively. Matching is whole
// element membership: a list attribute matches when one of its elements
// equals a selected value, and a partial value such as "deut" never matches
// "Deutsch".
type Condition struct {
	key    string
	values []string
	folded map[string]struct{}
}

// NewMatch creates a facet condition.
func NewMatch(key string, values ...string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("%w: filter key is required", domain.ErrInvalidRequest)
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("%w: match value is required for key %q", domain.ErrInvalidRequest, key)
	}
	if len(values) > MaxValuesPerFacet {
		return Condition{}, fmt.Errorf("%w: too many values for %q (max %d)",
			domain.ErrInvalidRequest, key, MaxValuesPerFacet)
	}
	fold := cases.Fold()
	folded := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			return Condition{}, fmt.Errorf("%w: match value is required for key %q", domain.ErrInvalidRequest, key)
		}
		folded[fold.String(v)] = struct{}{}
	}
	return Condition{key: key, values: append([]string(nil), values...), folded: folded}, nil
}

// Key returns the attribute name.
func (c Condition) Key() string { return c.key }

// Values returns the selected values as given.
func (c Condition) Values() []string { return c.values }

// Matches reports whether any element of v is a selected value.
func (c Condition) Matches(v entity.Value) bool {
	fold := cases.Fold()
	for _, item := range v.Items() {
		if _, ok := c.folded[fold.String(item)]; ok {
			return true
		}
	}
	return false
}

// Range is an inclusive year range; either bound may be open.
type Range struct {
	gte *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range. At least one bound is required.
func NewRangeFilter(gte, lte *float64) (Range, error) {
	if gte == nil && lte == nil {
		return Range{}, fmt.Errorf("%w: at least one range boundary is required", domain.ErrInvalidRequest)
	}
	if gte != nil && lte != nil && *gte > *lte {
		return Range{}, fmt.Errorf("%w: range start %v is after end %v", domain.ErrInvalidRequest, *gte, *lte)
	}
	return Range{gte: gte, lte: lte}, nil
}

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

// Overlaps reports whether the span [lo, hi] intersects the range.
func (r Range) Overlaps(lo, hi float64) bool {
	if r.gte != nil && hi < *r.gte {
		return false
	}
	if r.lte != nil && lo > *r.lte {
		return false
	}
	return true
}
