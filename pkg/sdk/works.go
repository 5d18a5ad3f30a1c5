package facetdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/facetdex/internal/domain/category"
	"github.com/kailas-cloud/facetdex/internal/domain/entity"
	searchuc "github.com/kailas-cloud/facetdex/internal/usecase/search"
)

// WorkService searches and stores works.
type WorkService struct {
	search  searchuc.Searcher
	catalog catalogWriter
	obs     *observer
}

// Search returns one page of works matching params, plus facets over all
// matches.
func (s *WorkService) Search(ctx context.Context, params SearchParams) (res SearchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search", start, err) }()

	req, err := toRequest(params)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	page, err := s.search.Search(ctx, &req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	res = fromPage(&page)
	s.obs.observeSearch(&res, params.Query)
	return res, nil
}

// Save stores works, replacing earlier versions with the same id.
func (s *WorkService) Save(ctx context.Context, works ...Work) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("save", start, err) }()

	entities := make([]entity.Entity, len(works))
	for i := range works {
		e, err := toEntity(&works[i])
		if err != nil {
			return fmt.Errorf("save: %w", err)
		}
		entities[i] = e
	}
	// Stale attributes of an earlier version must not survive a merge.
	for i := range entities {
		if err := s.catalog.DeleteEntity(ctx, entities[i].ID()); err != nil && !isNotFound(err) {
			return fmt.Errorf("save: %w", err)
		}
	}
	if err := s.catalog.SaveEntities(ctx, entities); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Delete removes a work. Returns ErrNotFound when it does not exist.
func (s *WorkService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("delete", start, err) }()

	if err := s.catalog.DeleteEntity(ctx, id); err != nil {
		return fmt.Errorf("delete work: %w", err)
	}
	return nil
}

// WorkTypeService manages the work type hierarchy.
type WorkTypeService struct {
	catalog catalogWriter
	obs     *observer
}

// Save stores work types. Parents may be saved after their children.
func (s *WorkTypeService) Save(ctx context.Context, types ...WorkType) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("save_work_types", start, err) }()

	for _, t := range types {
		if err := s.catalog.SaveWorkType(ctx, toTag(t)); err != nil {
			return fmt.Errorf("save work type %d: %w", t.ID, err)
		}
	}
	return nil
}

// List returns every stored work type ordered by id.
func (s *WorkTypeService) List(ctx context.Context) (_ []WorkType, err error) {
	start := time.Now()
	defer func() { s.obs.observe("list_work_types", start, err) }()

	tags, err := s.catalog.WorkTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list work types: %w", err)
	}
	out := make([]WorkType, len(tags))
	for i, t := range tags {
		out[i] = fromTag(t)
	}
	return out, nil
}

// Check verifies that the stored work types form a forest. Returns
// ErrMalformedHierarchy on a cycle or a dangling parent.
func (s *WorkTypeService) Check(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("check_work_types", start, err) }()

	if err := s.catalog.CheckHierarchy(ctx); err != nil {
		return fmt.Errorf("check work types: %w", err)
	}
	return nil
}

func toTag(t WorkType) category.Tag {
	return category.Tag{ID: t.ID, Label: t.Label, ParentID: t.ParentID}
}

func fromTag(t category.Tag) WorkType {
	return WorkType{ID: t.ID, Label: t.Label, ParentID: t.ParentID}
}
