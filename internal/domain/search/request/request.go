package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/search/filter"
	"github.com/kailas-cloud/facetdex/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search text length.
	MaxQueryLength = 4096
	DefaultLimit   = 20
	MaxLimit       = 100
)

// Request is a validated browse or search query.
type Request struct {
	query     string
	hasQuery  bool
	filters   filter.Expression
	limit     int
	limitSet  bool
	offset    int
	threshold *float64
}

// New validates and normalizes browse/search parameters. A nil query means
// browse mode. Limit defaults to 20 and is clamped to 100.
func New(
	query *string,
	filters filter.Expression,
	limit, offset int,
	threshold *float64,
) (Request, error) {
	r := Request{filters: filters}
	if query != nil {
		if strings.TrimSpace(*query) == "" {
			return Request{}, fmt.Errorf("%w: search text is empty", domain.ErrInvalidQuery)
		}
		if len(*query) > MaxQueryLength {
			return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
		}
		r.query, r.hasQuery = *query, true
	}
	r.limitSet = limit > 0
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		return Request{}, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidRequest)
	}
	if threshold != nil {
		if *threshold < 0 || *threshold > 1 {
			return Request{}, fmt.Errorf("%w: threshold must be between 0 and 1", domain.ErrInvalidRequest)
		}
		t := *threshold
		r.threshold = &t
	}
	r.limit, r.offset = limit, offset
	return r, nil
}

// Query returns the search text and whether one was given.
func (r *Request) Query() (string, bool) { return r.query, r.hasQuery }

// Mode returns Fuzzy when search text is present, Browse otherwise.
func (r *Request) Mode() mode.Mode {
	if r.hasQuery {
		return mode.Fuzzy
	}
	return mode.Browse
}

// Filters returns the pre-filter expression.
func (r *Request) Filters() filter.Expression { return r.filters }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// LimitSet reports whether the caller gave an explicit page size.
func (r *Request) LimitSet() bool { return r.limitSet }

// Offset returns the number of results to skip.
func (r *Request) Offset() int { return r.offset }

// Threshold returns the per-request similarity threshold override.
func (r *Request) Threshold() (float64, bool) {
	if r.threshold == nil {
		return 0, false
	}
	return *r.threshold, true
}
