package catalog

import (
	"context"
	"testing"

	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/db/badger"
	"github.com/kailas-cloud/facetdex/internal/domain/category"
	"github.com/kailas-cloud/facetdex/internal/domain/entity"
)

// mockStore implements db.HashStore for error-path tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hsetMultiFn    func(ctx context.Context, items []db.HashSetItem) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delFn          func(ctx context.Context, key string) error
	existsFn       func(ctx context.Context, key string) (bool, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

// newBadgerRepo returns a repository over an in-memory Badger store.
func newBadgerRepo(t *testing.T) *Repo {
	t.Helper()
	s, err := badger.Open(badger.Config{InMemory: true})
	if err != nil {
		t.Fatalf("badger.Open: %v", err)
	}
	t.Cleanup(s.Close)
	return New(s, "test:")
}

func testEntity(t *testing.T, id string) entity.Entity {
	t.Helper()
	e, err := entity.New(id,
		map[string]entity.Value{
			"title":    entity.Scalar("Der Sommer"),
			"language": entity.List("Deutsch", "Latein"),
			"subtitle": entity.Null(),
		},
		map[string]float64{"min_year": 1820, "max_year": 1822.5},
		[]category.Tag{{ID: 5, Label: "Roman", ParentID: 4}},
	)
	if err != nil {
		t.Fatalf("entity.New: %v", err)
	}
	return e
}
