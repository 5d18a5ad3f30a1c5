package facetdex

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string // "valkey", "redis" or "badger"
	addrs     []string
	password  string
	dir       string
	inMemory  bool
	keyPrefix string

	fields     []SearchField
	threshold  *float64
	facets     []string
	hierarchy  *string
	alwaysFold bool

	readinessTimeout time.Duration
	logger           *zap.Logger
	metricsReg       prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithBadger stores works in an embedded Badger database under dir.
func WithBadger(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "badger"
		c.dir = dir
		c.inMemory = false
	})
}

// WithBadgerInMemory stores works in a throwaway in-memory Badger database.
func WithBadgerInMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "badger"
		c.inMemory = true
	})
}

// WithKeyPrefix namespaces every stored key. Default: "facetdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithSearchFields sets the attributes scored by fuzzy search.
// Default: title and subtitle, both with diacritics folded.
func WithSearchFields(fields ...SearchField) Option {
	return optionFunc(func(c *clientConfig) {
		c.fields = append([]SearchField(nil), fields...)
	})
}

// WithThreshold sets the minimum similarity a fuzzy hit needs. Default: 0.4.
func WithThreshold(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.threshold = &t
	})
}

// WithFacets sets the flat facet attributes and the hierarchical facet name.
// An empty hierarchy disables the hierarchical facet.
// Default: language and topic, hierarchy work_type.
func WithFacets(flat []string, hierarchy string) Option {
	return optionFunc(func(c *clientConfig) {
		c.facets = append([]string{}, flat...)
		c.hierarchy = &hierarchy
	})
}

// WithFoldDiacritics folds diacritics on every search field.
func WithFoldDiacritics() Option {
	return optionFunc(func(c *clientConfig) {
		c.alwaysFold = true
	})
}

// WithReadinessTimeout bounds the initial connectivity check. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithMetrics registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
