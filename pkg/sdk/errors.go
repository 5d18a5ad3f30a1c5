package facetdex

import "github.com/kailas-cloud/facetdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery            = domain.ErrInvalidQuery
	ErrInvalidRequest          = domain.ErrInvalidRequest
	ErrMalformedHierarchy      = domain.ErrMalformedHierarchy
	ErrCollaboratorUnavailable = domain.ErrCollaboratorUnavailable
	ErrNotFound                = domain.ErrNotFound
)
