package facetdex

import (
	"context"
	"errors"
	"testing"
)

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(context.Background(), append([]Option{WithBadgerInMemory()}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func seed(t *testing.T, c *Client) {
	t.Helper()
	ctx := context.Background()

	if err := c.WorkTypes().Save(ctx,
		WorkType{ID: 5, Label: "Roman", ParentID: 4},
		WorkType{ID: 4, Label: "Prosa"},
		WorkType{ID: 6, Label: "Lyrik"},
	); err != nil {
		t.Fatalf("save work types: %v", err)
	}

	works := []Work{
		{
			ID:         "1",
			Attributes: map[string]string{"title": "Der Sommer"},
			Lists:      map[string][]string{"language": {"Deutsch"}, "topic": {"Jahreszeiten"}},
			Numerics:   map[string]float64{"min_year": 1820, "max_year": 1821},
			Categories: []WorkType{{ID: 5, Label: "Roman", ParentID: 4}},
		},
		{
			ID:         "2",
			Attributes: map[string]string{"title": "Ein Wintermärchen"},
			Lists:      map[string][]string{"language": {"Deutsch", "Englisch"}},
			Numerics:   map[string]float64{"min_year": 1844, "max_year": 1844},
			Categories: []WorkType{{ID: 6, Label: "Lyrik"}},
		},
		{
			ID:         "3",
			Attributes: map[string]string{"title": "Ärger im Sommerhaus"},
			Lists:      map[string][]string{"language": {"Latein"}},
			Categories: []WorkType{{ID: 4, Label: "Prosa"}},
		},
	}
	if err := c.Works().Save(ctx, works...); err != nil {
		t.Fatalf("save works: %v", err)
	}
}

func ids(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.ID
	}
	return out
}

func TestNew_NoStorage(t *testing.T) {
	if _, err := New(context.Background()); err == nil {
		t.Fatal("expected error when no storage configured")
	}
}

func TestCreateStore_Errors(t *testing.T) {
	tests := []*clientConfig{
		{driver: "unknown"},
		{driver: "valkey"},
		{driver: "badger"},
	}
	for _, cfg := range tests {
		if _, err := createStore(cfg); err == nil {
			t.Errorf("createStore(%+v): expected error", cfg)
		}
	}
}

func TestNew_InvalidSearchField(t *testing.T) {
	_, err := New(context.Background(), WithBadgerInMemory(),
		WithSearchFields(SearchField{Name: "title", Preprocessing: "stem"}))
	if err == nil {
		t.Fatal("expected error for invalid preprocessing")
	}
}

func TestWorks_Browse(t *testing.T) {
	c := newTestClient(t)
	seed(t, c)

	res, err := c.Works().Search(context.Background(), SearchParams{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Count != 3 || res.Limit != 20 {
		t.Errorf("count/limit = %d/%d", res.Count, res.Limit)
	}
	// German collation: "Ärger" sorts with "Arger", before "Der" and "Ein".
	want := []string{"3", "1", "2"}
	for i, id := range ids(res.Hits) {
		if id != want[i] {
			t.Fatalf("order = %v, want %v", ids(res.Hits), want)
		}
	}
	for _, h := range res.Hits {
		if h.Score != nil {
			t.Errorf("browse hit %s has a score", h.ID)
		}
	}
}

func TestWorks_FuzzySearch(t *testing.T) {
	c := newTestClient(t)
	seed(t, c)

	res, err := c.Works().Search(context.Background(), SearchParams{Query: String("Sommer")})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Hits) == 0 || res.Hits[0].ID != "1" {
		t.Fatalf("hits = %v, want 1 first", ids(res.Hits))
	}
	for _, h := range res.Hits {
		if h.ID == "2" {
			t.Error("Wintermärchen should fall below the threshold")
		}
		if h.Score == nil || *h.Score < 0.4 || *h.Score > 1 {
			t.Errorf("hit %s score = %v", h.ID, h.Score)
		}
	}
}

func TestWorks_FiltersAndFacets(t *testing.T) {
	c := newTestClient(t)
	seed(t, c)

	res, err := c.Works().Search(context.Background(), SearchParams{
		Facets:    map[string][]string{"language": {"deutsch"}},
		StartYear: Int(1830),
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Hits) != 1 || res.Hits[0].ID != "2" {
		t.Fatalf("hits = %v, want [2]", ids(res.Hits))
	}
	if got := res.Facets["language"]; len(got) != 2 || got[0] != (FacetValue{Key: "Deutsch", Count: 1}) {
		t.Errorf("language facet = %+v", got)
	}
	if res.HierarchyName != "work_type" || len(res.Hierarchy) != 1 || res.Hierarchy[0].Label != "Lyrik" {
		t.Errorf("hierarchy = %+v", res.Hierarchy)
	}
}

func TestWorks_HierarchyRollUp(t *testing.T) {
	c := newTestClient(t)
	seed(t, c)

	res, err := c.Works().Search(context.Background(), SearchParams{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	var prosa *FacetNode
	for i := range res.Hierarchy {
		if res.Hierarchy[i].ID == 4 {
			prosa = &res.Hierarchy[i]
		}
	}
	if prosa == nil {
		t.Fatalf("Prosa missing from %+v", res.Hierarchy)
	}
	if prosa.Count != 2 || len(prosa.Children) != 1 || prosa.Children[0].Count != 1 {
		t.Errorf("Prosa = %+v, want count 2 with Roman 1", *prosa)
	}
}

func TestWorks_Pagination(t *testing.T) {
	c := newTestClient(t)
	seed(t, c)

	res, err := c.Works().Search(context.Background(), SearchParams{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Count != 3 || len(res.Hits) != 1 || res.Hits[0].ID != "1" {
		t.Errorf("page = %d %v", res.Count, ids(res.Hits))
	}
}

func TestWorks_SearchErrors(t *testing.T) {
	c := newTestClient(t)
	seed(t, c)
	ctx := context.Background()

	tests := []struct {
		name   string
		params SearchParams
		want   error
	}{
		{"blank query", SearchParams{Query: String("  ")}, ErrInvalidQuery},
		{"unknown facet", SearchParams{Facets: map[string][]string{"colour": {"red"}}}, ErrInvalidRequest},
		{"inverted years", SearchParams{StartYear: Int(1900), EndYear: Int(1800)}, ErrInvalidRequest},
		{"threshold", SearchParams{Query: String("x"), Threshold: Float(2)}, ErrInvalidRequest},
		{"negative limit", SearchParams{Limit: -1}, ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Works().Search(ctx, tt.params); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestWorks_SaveReplacesAndDelete(t *testing.T) {
	c := newTestClient(t)
	seed(t, c)
	ctx := context.Background()

	if err := c.Works().Save(ctx, Work{ID: "1", Attributes: map[string]string{"title": "Herbst"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	res, err := c.Works().Search(ctx, SearchParams{Facets: map[string][]string{"topic": {"Jahreszeiten"}}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Hits) != 0 {
		t.Errorf("stale topic survived: %v", ids(res.Hits))
	}

	if err := c.Works().Delete(ctx, "1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := c.Works().Delete(ctx, "1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWorks_SaveInvalid(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	tests := []Work{
		{},
		{ID: "1", Attributes: map[string]string{"title": "x"}, Lists: map[string][]string{"title": {"y"}}},
		{ID: "1", Categories: []WorkType{{ID: 0, Label: "x"}}},
	}
	for _, w := range tests {
		if err := c.Works().Save(ctx, w); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Save(%+v): expected ErrInvalidRequest, got %v", w, err)
		}
	}
}

func TestWorkTypes_CheckAndHealth(t *testing.T) {
	c := newTestClient(t)
	seed(t, c)
	ctx := context.Background()

	if err := c.WorkTypes().Check(ctx); err != nil {
		t.Fatalf("Check: %v", err)
	}
	h := c.Health(ctx)
	if !h.OK() {
		t.Errorf("health = %+v", h)
	}
	if got := h.Components(); len(got) != 2 || got[0] != "database" || got[1] != "hierarchy" {
		t.Errorf("Components = %v", got)
	}
	types, err := c.WorkTypes().List(ctx)
	if err != nil || len(types) != 3 || types[0].ID != 4 {
		t.Errorf("List = %+v, %v", types, err)
	}

	_ = c.WorkTypes().Save(ctx, WorkType{ID: 4, Label: "Prosa", ParentID: 5})
	if err := c.WorkTypes().Check(ctx); !errors.Is(err, ErrMalformedHierarchy) {
		t.Errorf("expected ErrMalformedHierarchy, got %v", err)
	}
	if h := c.Health(ctx); h.Status != HealthDegraded || h.Checks["hierarchy"] != "error" {
		t.Errorf("health = %+v", h)
	}
}

func TestWithFacets_DisablesHierarchy(t *testing.T) {
	c := newTestClient(t, WithFacets([]string{"language"}, ""))
	seed(t, c)

	res, err := c.Works().Search(context.Background(), SearchParams{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.HierarchyName != "" || len(res.Hierarchy) != 0 {
		t.Errorf("hierarchy = %q %+v", res.HierarchyName, res.Hierarchy)
	}
	if _, ok := res.Facets["topic"]; ok {
		t.Error("topic facet should not be computed")
	}
}

func TestPing(t *testing.T) {
	c := newTestClient(t)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
