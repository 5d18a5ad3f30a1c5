package facetdex

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Operation statuses reported by facetdex_sdk_operations_total.
const (
	statusOK      = "ok"
	statusInvalid = "invalid"
	statusError   = "error"
)

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	// matches counts works passing the filters (and threshold) per search.
	matches *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "facetdex",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK calls by operation and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "facetdex",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK call latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		matches: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "facetdex",
			Subsystem: "sdk",
			Name:      "search_matches",
			Help:      "Works matched per SDK search, by mode.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"mode"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.matches); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or points it at an identical collector that
// reg already holds. Several clients may share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("facetdex: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("facetdex: metric already registered as %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer logs and counts SDK calls. A nil observer is a no-op.
type observer struct {
	logger  *zap.Logger
	metrics *sdkMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &observer{logger: logger.Named("sdk")}
	if reg == nil {
		return o, nil
	}
	m, err := newSDKMetrics(reg)
	if err != nil {
		return nil, err
	}
	o.metrics = m
	return o, nil
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, ErrInvalidQuery), errors.Is(err, ErrInvalidRequest):
		return statusInvalid
	default:
		return statusError
	}
}

// observe records one SDK call.
func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := statusOf(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	fields := []zap.Field{zap.String("op", op), zap.Duration("duration", dur)}
	switch status {
	case statusOK:
		o.logger.Debug("operation completed", fields...)
	case statusInvalid:
		o.logger.Info("operation rejected", append(fields, zap.Error(err))...)
	default:
		o.logger.Warn("operation failed", append(fields, zap.Error(err))...)
	}
}

// observeSearch records the size of a successful search.
func (o *observer) observeSearch(res *SearchResult, query *string) {
	if o == nil || o.metrics == nil {
		return
	}
	mode := "browse"
	if query != nil {
		mode = "search"
	}
	o.metrics.matches.WithLabelValues(mode).Observe(float64(res.Count))
}
