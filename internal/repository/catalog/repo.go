// Package catalog stores catalog entities and work types in a hash store.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/category"
	"github.com/kailas-cloud/facetdex/internal/domain/entity"
	"github.com/kailas-cloud/facetdex/internal/domain/facet"
)

// multiGetBatch bounds keys per HGetAllMulti round-trip.
const multiGetBatch = 500

// Repo implements the candidate lister and ancestor resolver over a db.HashStore.
type Repo struct {
	store  db.HashStore
	prefix string
}

// New creates a catalog repository. Keys are namespaced by prefix.
func New(s db.HashStore, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

func (r *Repo) entityKey(id string) string { return r.prefix + "entity:" + id }

func (r *Repo) workTypeKey(id int64) string {
	return r.prefix + "worktype:" + strconv.FormatInt(id, 10)
}

// ListCandidates returns every stored entity ordered by id (numeric ids
// numerically).
func (r *Repo) ListCandidates(ctx context.Context) ([]entity.Entity, error) {
	hashes, err := r.loadAll(ctx, r.prefix+"entity:*")
	if err != nil {
		return nil, err
	}

	out := make([]entity.Entity, 0, len(hashes))
	for _, m := range hashes {
		e, err := parseEntityFields(m)
		if err != nil {
			return nil, domain.Unavailable("decode entity", err)
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return lessID(out[i].ID(), out[j].ID()) })
	return out, nil
}

// ResolveAncestor returns the work type with the given id.
func (r *Repo) ResolveAncestor(ctx context.Context, id int64) (category.Tag, error) {
	m, err := r.store.HGetAll(ctx, r.workTypeKey(id))
	if err != nil {
		return category.Tag{}, domain.Unavailable(fmt.Sprintf("get work type %d", id), err)
	}
	if len(m) == 0 {
		return category.Tag{}, fmt.Errorf("work type %d: %w", id, domain.ErrNotFound)
	}
	t, err := parseWorkTypeFields(m)
	if err != nil {
		return category.Tag{}, domain.Unavailable("decode work type", err)
	}
	return t, nil
}

// SaveEntity replaces a stored entity.
func (r *Repo) SaveEntity(ctx context.Context, e *entity.Entity) error {
	fields, err := buildEntityFields(e)
	if err != nil {
		return err
	}
	key := r.entityKey(e.ID())
	if err := r.store.Del(ctx, key); err != nil {
		return domain.Unavailable("del "+key, err)
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return domain.Unavailable("hset "+key, err)
	}
	return nil
}

// SaveEntities writes entities in one batch. Existing hashes are merged,
// not replaced; use SaveEntity to drop stale attributes.
func (r *Repo) SaveEntities(ctx context.Context, entities []entity.Entity) error {
	items := make([]db.HashSetItem, len(entities))
	for i := range entities {
		fields, err := buildEntityFields(&entities[i])
		if err != nil {
			return err
		}
		items[i] = db.HashSetItem{Key: r.entityKey(entities[i].ID()), Fields: fields}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return domain.Unavailable("hset entities", err)
	}
	return nil
}

// SaveWorkType stores a work type.
func (r *Repo) SaveWorkType(ctx context.Context, t category.Tag) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if err := r.store.HSet(ctx, r.workTypeKey(t.ID), buildWorkTypeFields(t)); err != nil {
		return domain.Unavailable("hset work type", err)
	}
	return nil
}

// DeleteEntity removes an entity.
func (r *Repo) DeleteEntity(ctx context.Context, id string) error {
	key := r.entityKey(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return domain.Unavailable("exists "+key, err)
	}
	if !exists {
		return fmt.Errorf("entity %s: %w", id, domain.ErrNotFound)
	}
	if err := r.store.Del(ctx, key); err != nil {
		return domain.Unavailable("del "+key, err)
	}
	return nil
}

// WorkTypes returns every stored work type ordered by id.
func (r *Repo) WorkTypes(ctx context.Context) ([]category.Tag, error) {
	hashes, err := r.loadAll(ctx, r.prefix+"worktype:*")
	if err != nil {
		return nil, err
	}
	out := make([]category.Tag, 0, len(hashes))
	for _, m := range hashes {
		t, err := parseWorkTypeFields(m)
		if err != nil {
			return nil, domain.Unavailable("decode work type", err)
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CheckHierarchy verifies that stored work types form a forest.
func (r *Repo) CheckHierarchy(ctx context.Context) error {
	types, err := r.WorkTypes(ctx)
	if err != nil {
		return err
	}
	if _, err := facet.AggregateHierarchy(ctx, types, r); err != nil {
		return fmt.Errorf("check hierarchy: %w", err)
	}
	return nil
}

// loadAll scans keys by pattern and fetches their hashes in batches. Keys
// removed between scan and fetch are skipped.
func (r *Repo) loadAll(ctx context.Context, pattern string) ([]map[string]string, error) {
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return nil, domain.Unavailable("scan "+pattern, err)
	}

	out := make([]map[string]string, 0, len(keys))
	for start := 0; start < len(keys); start += multiGetBatch {
		end := min(start+multiGetBatch, len(keys))
		hashes, err := r.store.HGetAllMulti(ctx, keys[start:end])
		if err != nil {
			return nil, domain.Unavailable("hgetall "+pattern, err)
		}
		for _, m := range hashes {
			if len(m) > 0 {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// lessID orders numeric ids numerically and everything else lexically,
// numeric ids first.
func lessID(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return strings.Compare(a, b) < 0
	}
}
