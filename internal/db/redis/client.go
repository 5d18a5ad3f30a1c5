// Package redis implements db.Store on Redis or Valkey through rueidis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/metrics"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Driver names.
const (
	DriverRedis  = "redis"
	DriverValkey = "valkey"
)

// scanCount is the COUNT hint for SCAN pages.
const scanCount = 200

// Config holds connection parameters for a Redis or Valkey store.
type Config struct {
	Driver   string
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store implements db.Store via rueidis.
type Store struct {
	client rueidis.Client
	driver string
}

// NewStore creates a store via rueidis. Only plain hash commands are used,
// so the same client serves Redis and Valkey.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	driver := cfg.Driver
	if driver == "" {
		driver = DriverRedis
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, driver: driver}, nil
}

// Driver returns "redis" or "valkey".
func (s *Store) Driver() string { return s.driver }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	defer s.observe(db.OpPing, time.Now())
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady retries Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForPing(ctx, s, timeout) //nolint:wrapcheck // already wrapped
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

func (s *Store) observe(op string, start time.Time) {
	metrics.StoreOperationDuration.WithLabelValues(s.driver, op).Observe(time.Since(start).Seconds())
}
