package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/search/filter"
	"github.com/kailas-cloud/facetdex/internal/domain/search/mode"
)

func emptyFilters() filter.Expression {
	e, _ := filter.NewExpression(nil, nil)
	return e
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestNew_Defaults(t *testing.T) {
	r, err := New(nil, emptyFilters(), 0, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.Query(); ok {
		t.Error("Query() reported text for browse request")
	}
	if r.Mode() != mode.Browse {
		t.Errorf("Mode() = %q, want browse", r.Mode())
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), DefaultLimit)
	}
	if r.LimitSet() {
		t.Error("LimitSet() = true without a limit")
	}
	if r.Offset() != 0 {
		t.Errorf("Offset() = %d", r.Offset())
	}
	if _, ok := r.Threshold(); ok {
		t.Error("Threshold() set without override")
	}
}

func TestNew_ExplicitValues(t *testing.T) {
	r, err := New(strPtr("Sommer"), emptyFilters(), 50, 40, floatPtr(0.7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q, ok := r.Query(); !ok || q != "Sommer" {
		t.Errorf("Query() = %q, %v", q, ok)
	}
	if r.Mode() != mode.Fuzzy {
		t.Errorf("Mode() = %q", r.Mode())
	}
	if r.Limit() != 50 || !r.LimitSet() || r.Offset() != 40 {
		t.Errorf("Limit/Offset = %d/%d", r.Limit(), r.Offset())
	}
	if th, ok := r.Threshold(); !ok || th != 0.7 {
		t.Errorf("Threshold() = %v, %v", th, ok)
	}
}

func TestNew_LimitClamped(t *testing.T) {
	r, err := New(nil, emptyFilters(), 1000, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != MaxLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), MaxLimit)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name      string
		query     *string
		offset    int
		threshold *float64
		want      error
	}{
		{"empty search text", strPtr(""), 0, nil, domain.ErrInvalidQuery},
		{"whitespace search text", strPtr(" \t "), 0, nil, domain.ErrInvalidQuery},
		{"query too long", strPtr(strings.Repeat("a", MaxQueryLength+1)), 0, nil, domain.ErrInvalidRequest},
		{"negative offset", nil, -1, nil, domain.ErrInvalidRequest},
		{"threshold below zero", nil, 0, floatPtr(-0.1), domain.ErrInvalidRequest},
		{"threshold above one", nil, 0, floatPtr(1.1), domain.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.query, emptyFilters(), 0, tt.offset, tt.threshold)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNew_ThresholdCopied(t *testing.T) {
	th := 0.5
	r, _ := New(nil, emptyFilters(), 0, 0, &th)
	th = 0.9
	if got, _ := r.Threshold(); got != 0.5 {
		t.Errorf("Threshold() = %v, want 0.5", got)
	}
}
