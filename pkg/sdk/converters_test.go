package facetdex

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	"github.com/kailas-cloud/facetdex/internal/domain/search/mode"
	searchuc "github.com/kailas-cloud/facetdex/internal/usecase/search"
)

func TestEntityRoundTrip(t *testing.T) {
	w := Work{
		ID:         "7",
		Attributes: map[string]string{"title": "Der Sommer"},
		Lists:      map[string][]string{"language": {"Deutsch", "Latein"}},
		Numerics:   map[string]float64{"min_year": 1820},
		Categories: []WorkType{{ID: 5, Label: "Roman", ParentID: 4}},
	}
	e, err := toEntity(&w)
	if err != nil {
		t.Fatalf("toEntity: %v", err)
	}
	if got := fromEntity(&e); !reflect.DeepEqual(got, w) {
		t.Errorf("round trip = %+v, want %+v", got, w)
	}
}

func TestToRequest(t *testing.T) {
	req, err := toRequest(SearchParams{
		Query:   String("Sommer"),
		Facets:  map[string][]string{"topic": {"Traum"}, "language": {"Deutsch"}},
		EndYear: Int(1850),
		Limit:   500,
	})
	if err != nil {
		t.Fatalf("toRequest: %v", err)
	}
	if req.Mode() != mode.Fuzzy {
		t.Errorf("mode = %q", req.Mode())
	}
	facets := req.Filters().Facets()
	if len(facets) != 2 || facets[0].Key() != "language" {
		t.Errorf("facets not sorted by name: %+v", facets)
	}
	if y := req.Filters().Years(); y == nil || y.GTE() != nil || *y.LTE() != 1850 {
		t.Errorf("years = %+v", y)
	}
	if req.Limit() != 100 {
		t.Errorf("limit = %d, want clamp to 100", req.Limit())
	}
}

func TestFromPage_Hierarchy(t *testing.T) {
	roman := &facet.Node{ID: 5, Label: "Roman", TotalCount: 1}
	page := searchuc.Page{
		Count: 3,
		Facets: searchuc.Facets{
			Flat:          map[string][]facet.Value{"language": {{Key: "Deutsch", Count: 3}}},
			HierarchyName: "work_type",
			Hierarchy:     []*facet.Node{{ID: 4, Label: "Prosa", TotalCount: 3, Children: []*facet.Node{roman}}},
		},
	}
	res := fromPage(&page)

	want := []FacetNode{{
		ID: 4, Label: "Prosa", Count: 3,
		Children: []FacetNode{{ID: 5, Label: "Roman", Count: 1, Children: []FacetNode{}}},
	}}
	if !reflect.DeepEqual(res.Hierarchy, want) {
		t.Errorf("hierarchy = %+v", res.Hierarchy)
	}
	if res.Facets["language"][0] != (FacetValue{Key: "Deutsch", Count: 3}) {
		t.Errorf("flat = %+v", res.Facets)
	}
	if len(res.Hits) != 0 {
		t.Errorf("hits = %+v", res.Hits)
	}
}
