package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/category"
	"github.com/kailas-cloud/facetdex/internal/domain/entity"
	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	"github.com/kailas-cloud/facetdex/internal/domain/search/filter"
	"github.com/kailas-cloud/facetdex/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/facetdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/facetdex/internal/usecase/search"
)

// ErrorCode is the machine-readable error code of an error response.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest              ErrorCode = "bad_request"
	ErrorCodeInvalidQuery            ErrorCode = "invalid_query"
	ErrorCodeValidationFailed        ErrorCode = "validation_failed"
	ErrorCodeMalformedHierarchy      ErrorCode = "malformed_hierarchy"
	ErrorCodeCollaboratorUnavailable ErrorCode = "collaborator_unavailable"
	ErrorCodeInternalError           ErrorCode = "internal_error"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// WorkResult is one entity of a works page.
type WorkResult struct {
	ID         string                  `json:"id"`
	Score      *float64                `json:"score,omitempty"`
	Attributes map[string]entity.Value `json:"attributes"`
	Numerics   map[string]float64      `json:"numerics,omitempty"`
	Categories []category.Tag          `json:"categories"`
}

// WorksResponse is the body of GET /works.
type WorksResponse struct {
	Count   int            `json:"count"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
	Results []WorkResult   `json:"results"`
	Facets  map[string]any `json:"facets"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface.
type Server struct {
	search        searchuc.Searcher
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(search searchuc.Searcher, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search: search,
		health: health,
		logger: logger,
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeInvalidQuery),
			sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
			sentinelHandler(domain.ErrMalformedHierarchy,
				http.StatusInternalServerError, ErrorCodeMalformedHierarchy),
			sentinelHandler(domain.ErrCollaboratorUnavailable,
				http.StatusServiceUnavailable, ErrorCodeCollaboratorUnavailable),
		},
	}
}

// ListWorks handles GET /works.
func (s *Server) ListWorks(w http.ResponseWriter, r *http.Request, params ListWorksParams) {
	req, err := requestFromParams(params)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	page, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(&page))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// BindErrorHandler answers query parameters that failed to bind.
func BindErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	msg := "invalid request"
	var pe *InvalidParamFormatError
	if errors.As(err, &pe) {
		msg = "invalid value for parameter " + pe.ParamName
	}
	writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, msg)
}

func requestFromParams(p ListWorksParams) (request.Request, error) {
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
		rf, err := filter.NewRangeFilter(yearBound(p.StartYear), yearBound(p.EndYear))
		if err != nil {
			return request.Request{}, err //nolint:wrapcheck // domain sentinel
		}
		years = &rf
	}

	expr, err := filter.NewExpression(conds, years)
	if err != nil {
		return request.Request{}, err //nolint:wrapcheck // domain sentinel
	}

	limit := 0
	if p.Limit != nil {
		if *p.Limit < 1 {
			return request.Request{}, fmt.Errorf("%w: limit must be at least 1", domain.ErrInvalidRequest)
		}
		limit = *p.Limit
	}

	req, err := request.New(p.Search, expr, limit, derefInt(p.Offset), p.Threshold)
	if err != nil {
		return request.Request{}, err //nolint:wrapcheck // domain sentinel
	}
	return req, nil
}

func yearBound(y *int) *float64 {
	if y == nil {
		return nil
	}
	f := float64(*y)
	return &f
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func pageToResponse(page *searchuc.Page) WorksResponse {
	results := make([]WorkResult, len(page.Results))
	for i := range page.Results {
		results[i] = hitToResult(&page.Results[i])
	}

	facets := make(map[string]any, len(page.Facets.Flat)+1)
	for name, values := range page.Facets.Flat {
		if values == nil {
			values = []facet.Value{}
		}
		facets[name] = values
	}
	if page.Facets.HierarchyName != "" {
		forest := page.Facets.Hierarchy
		if forest == nil {
			forest = []*facet.Node{}
		}
		facets[page.Facets.HierarchyName] = forest
	}

	return WorksResponse{
		Count:   page.Count,
		Limit:   page.Limit,
		Offset:  page.Offset,
		Results: results,
		Facets:  facets,
	}
}

func hitToResult(h *searchuc.Hit) WorkResult {
	attrs := h.Entity.Attributes()
	if attrs == nil {
		attrs = map[string]entity.Value{}
	}
	cats := h.Entity.Categories()
	if cats == nil {
		cats = []category.Tag{}
	}
	return WorkResult{
		ID:         h.Entity.ID(),
		Score:      h.Score,
		Attributes: attrs,
		Numerics:   h.Entity.Numerics(),
		Categories: cats,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a client-safe message. Validation errors carry
// their detail; everything else is reduced to the sentinel text.
func safeDomainMessage(err error) string {
	for _, s := range []error{domain.ErrInvalidQuery, domain.ErrInvalidRequest} {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	for _, s := range []error{domain.ErrMalformedHierarchy, domain.ErrCollaboratorUnavailable} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
