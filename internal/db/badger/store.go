// Package badger implements db.Store on an embedded BadgerDB. Each hash is
// one key holding its fields as a JSON object.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/metrics"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Driver is the driver name.
const Driver = "badger"

// Config holds BadgerDB options.
type Config struct {
	// Dir is the data directory; ignored when InMemory is set.
	Dir      string
	InMemory bool
	Logger   *zap.Logger
}

// Store implements db.Store on BadgerDB.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the database.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			return nil, fmt.Errorf("dir is required")
		}
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Logger = &zapAdapter{log: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: bdb}, nil
}

// Driver returns "badger".
func (s *Store) Driver() string { return Driver }

// Ping reports whether the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return &db.Error{Op: db.OpPing, Err: badger.ErrDBClosed}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady returns once Ping succeeds. An embedded database is ready as
// soon as it is open.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForPing(ctx, s, timeout) //nolint:wrapcheck // already wrapped
}

// HSet merges fields into the hash at key.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	defer observe(db.OpHSet, time.Now())
	err := s.db.Update(func(txn *badger.Txn) error {
		return merge(txn, key, fields)
	})
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HSetMulti merges several hashes in one transaction.
func (s *Store) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}
	defer observe(db.OpHSet, time.Now())
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, item := range items {
			if err := merge(txn, item.Key, item.Fields); err != nil {
				return fmt.Errorf("key %s: %w", item.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HGetAll returns all fields of a hash; empty for a missing key.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	defer observe(db.OpHGetAll, time.Now())
	var out map[string]string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = load(txn, key)
		return err
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return out, nil
}

// HGetAllMulti reads several hashes from one snapshot. Results are positional.
func (s *Store) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	defer observe(db.OpHGetAll, time.Now())
	out := make([]map[string]string, len(keys))
	err := s.db.View(func(txn *badger.Txn) error {
		for i, key := range keys {
			m, err := load(txn, key)
			if err != nil {
				return fmt.Errorf("key %s: %w", key, err)
			}
			out[i] = m
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return out, nil
}

// Del deletes a key. Deleting a missing key is not an error.
func (s *Store) Del(_ context.Context, key string) error {
	defer observe(db.OpDel, time.Now())
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists checks if a key exists.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	defer observe(db.OpExists, time.Now())
	exists := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			return nil
		case err != nil:
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return exists, nil
}

// Scan returns keys matching a glob pattern in key order, with the same
// pattern rules as Redis SCAN MATCH. The literal prefix of the pattern
// bounds the iteration.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	defer observe(db.OpScan, time.Now())
	prefix := []byte(literalPrefix(pattern))

	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := string(it.Item().Key())
			if matchGlob(pattern, key) {
				keys = append(keys, key)
			}
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	return keys, nil
}

func literalPrefix(pattern string) string {
	if i := strings.IndexAny(pattern, `*?[\`); i >= 0 {
		return pattern[:i]
	}
	return pattern
}

func load(txn *badger.Txn, key string) (map[string]string, error) {
	out := make(map[string]string)
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &out)
	})
	if err != nil {
		return nil, fmt.Errorf("decode hash: %w", err)
	}
	return out, nil
}

func merge(txn *badger.Txn, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return fmt.Errorf("no fields")
	}
	current, err := load(txn, key)
	if err != nil {
		return err
	}
	for k, v := range fields {
		current[k] = v
	}
	data, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("encode hash: %w", err)
	}
	return txn.Set([]byte(key), data)
}

func observe(op string, start time.Time) {
	metrics.StoreOperationDuration.WithLabelValues(Driver, op).Observe(time.Since(start).Seconds())
}

// zapAdapter adapts a zap logger to badger.Logger.
type zapAdapter struct {
	log *zap.SugaredLogger
}

var _ badger.Logger = (*zapAdapter)(nil)

func (a *zapAdapter) Errorf(msg string, args ...any)   { a.log.Errorf(strings.TrimSpace(msg), args...) }
func (a *zapAdapter) Warningf(msg string, args ...any) { a.log.Warnf(strings.TrimSpace(msg), args...) }
func (a *zapAdapter) Infof(msg string, args ...any)    { a.log.Debugf(strings.TrimSpace(msg), args...) }
func (a *zapAdapter) Debugf(msg string, args ...any)   { a.log.Debugf(strings.TrimSpace(msg), args...) }
