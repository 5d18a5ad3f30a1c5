package search

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/search/request"
	"github.com/kailas-cloud/facetdex/internal/metrics"
)

type stubSearcher struct {
	page Page
	err  error
}

func (s *stubSearcher) Search(_ context.Context, _ *request.Request) (Page, error) {
	return s.page, s.err
}

func TestInstrumented_Success(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	inst := NewInstrumented(&stubSearcher{page: Page{Candidates: 7, Count: 3}}, zap.New(core))

	before := testutil.ToFloat64(metrics.SearchRequestsTotal.WithLabelValues("browse", "ok"))
	page, err := inst.Search(context.Background(), mustRequest(t, nil, noFilters(), 0, 0))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Count != 3 {
		t.Errorf("Count = %d", page.Count)
	}
	after := testutil.ToFloat64(metrics.SearchRequestsTotal.WithLabelValues("browse", "ok"))
	if after-before != 1 {
		t.Errorf("search_requests_total delta = %v, want 1", after-before)
	}
	if logs.FilterMessage("Search completed").Len() != 1 {
		t.Error("expected a completion log entry")
	}
}

func TestInstrumented_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status string
		reason string
	}{
		{"invalid query", domain.ErrInvalidQuery, "invalid_query", ""},
		{"unavailable", domain.Unavailable("scan", errors.New("eof")), "unavailable", ""},
		{"cycle", domain.NewHierarchyCycle([]int64{1, 2, 1}), "malformed_hierarchy", "cycle"},
		{"dangling", domain.ErrMalformedHierarchy, "malformed_hierarchy", "dangling"},
		{"canceled", context.Canceled, "canceled", ""},
		{"other", errors.New("boom"), "error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			inst := NewInstrumented(&stubSearcher{err: tt.err}, zap.New(core))

			counter := metrics.SearchRequestsTotal.WithLabelValues("fuzzy", tt.status)
			before := testutil.ToFloat64(counter)
			var reasonBefore float64
			if tt.reason != "" {
				reasonBefore = testutil.ToFloat64(metrics.HierarchyErrorsTotal.WithLabelValues(tt.reason))
			}

			_, err := inst.Search(context.Background(), mustRequest(t, strPtr("Sommer"), noFilters(), 0, 0))
			if !errors.Is(err, tt.err) {
				t.Fatalf("error not propagated: %v", err)
			}
			if d := testutil.ToFloat64(counter) - before; d != 1 {
				t.Errorf("status %q delta = %v", tt.status, d)
			}
			if tt.reason != "" {
				d := testutil.ToFloat64(metrics.HierarchyErrorsTotal.WithLabelValues(tt.reason)) - reasonBefore
				if d != 1 {
					t.Errorf("hierarchy_errors_total{%s} delta = %v", tt.reason, d)
				}
			}
			if logs.FilterMessage("Search failed").Len() != 1 {
				t.Error("expected a failure log entry")
			}
		})
	}
}
