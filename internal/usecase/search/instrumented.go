package search

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/facetdex/internal/logger"
	"github.com/kailas-cloud/facetdex/internal/metrics"
)

// Searcher runs browse/search requests.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (Page, error)
}

// Instrumented wraps a Searcher with Prometheus metrics and logging.
type Instrumented struct {
	inner  Searcher
	logger *zap.Logger
}

// NewInstrumented wraps inner with observability.
func NewInstrumented(inner Searcher, logger *zap.Logger) *Instrumented {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumented{inner: inner, logger: logger}
}

// Search delegates to the inner searcher and records the outcome.
func (i *Instrumented) Search(ctx context.Context, req *request.Request) (Page, error) {
	m := string(req.Mode())
	start := time.Now()

	page, err := i.inner.Search(ctx, req)

	duration := time.Since(start)
	metrics.SearchRequestDuration.WithLabelValues(m).Observe(duration.Seconds())

	if err != nil {
		status := errorStatus(err)
		metrics.SearchRequestsTotal.WithLabelValues(m, status).Inc()
		if reason := hierarchyReason(err); reason != "" {
			metrics.HierarchyErrorsTotal.WithLabelValues(reason).Inc()
		}

		l := logpkg.FromContext(ctx, i.logger)
		log := l.Warn
		if status == "malformed_hierarchy" || status == "unavailable" || status == "error" {
			log = l.Error
		}
		log("Search failed",
			zap.String("mode", m),
			zap.String("status", status),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return Page{}, err
	}

	metrics.SearchRequestsTotal.WithLabelValues(m, "ok").Inc()
	metrics.SearchCandidates.Observe(float64(page.Candidates))
	metrics.SearchResults.WithLabelValues(m).Observe(float64(page.Count))

	logpkg.FromContext(ctx, i.logger).Debug("Search completed",
		zap.String("mode", m),
		zap.Duration("duration", duration),
		zap.Int("candidates", page.Candidates),
		zap.Int("results", page.Count),
		zap.Int("returned", len(page.Results)),
	)
	return page, nil
}

func errorStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, domain.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, domain.ErrMalformedHierarchy):
		return "malformed_hierarchy"
	case errors.Is(err, domain.ErrCollaboratorUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

func hierarchyReason(err error) string {
	if !errors.Is(err, domain.ErrMalformedHierarchy) {
		return ""
	}
	var cycle *domain.HierarchyCycleError
	if errors.As(err, &cycle) {
		return "cycle"
	}
	return "dangling"
}
