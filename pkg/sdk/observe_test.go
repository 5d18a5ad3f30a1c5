package facetdex

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	zapobserver "go.uber.org/zap/zaptest/observer"
)

func TestObserver_MetricsAndLogs(t *testing.T) {
	reg := prometheus.NewRegistry()
	core, logs := zapobserver.New(zapcore.DebugLevel)

	obs, err := newObserver(zap.New(core), reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("search", time.Now(), nil)
	obs.observe("search", time.Now(), fmt.Errorf("search: %w", ErrInvalidQuery))
	obs.observe("search", time.Now(), errors.New("boom"))

	for status, want := range map[string]float64{"ok": 1, "invalid": 1, "error": 1} {
		got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("search", status))
		if got != want {
			t.Errorf("operations{search,%s} = %v, want %v", status, got, want)
		}
	}
	if n := logs.FilterMessage("operation failed").Len(); n != 1 {
		t.Errorf("failed log lines = %d, want 1", n)
	}
	if n := logs.FilterMessage("operation rejected").Len(); n != 1 {
		t.Errorf("rejected log lines = %d, want 1", n)
	}
	if n := logs.FilterMessage("operation completed").Len(); n != 1 {
		t.Errorf("completed log lines = %d, want 1", n)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first observer: %v", err)
	}
	b, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second observer: %v", err)
	}
	if a.metrics.operations != b.metrics.operations {
		t.Error("expected the registered counter to be reused")
	}
}

func TestObserver_Nil(t *testing.T) {
	var obs *observer
	obs.observe("ping", time.Now(), nil)

	quiet, err := newObserver(nil, nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	quiet.observe("ping", time.Now(), errors.New("boom"))
}

func TestObserver_SearchMatches(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observeSearch(&SearchResult{Count: 3}, nil)
	obs.observeSearch(&SearchResult{Count: 1}, String("sommer"))
	obs.observeSearch(&SearchResult{Count: 0}, String("winter"))

	if n := testutil.CollectAndCount(obs.metrics.matches); n != 2 {
		t.Errorf("match series = %d, want 2 (browse, search)", n)
	}
}

func TestClient_WithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestClient(t, WithMetrics(reg))

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("ping", "ok")); got != 1 {
		t.Errorf("ping count = %v", got)
	}
}
