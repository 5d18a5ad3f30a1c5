package facetdex

// Preprocessing is applied to a search field before scoring.
type Preprocessing string

// Preprocessing constants.
const (
	PreprocessNone           Preprocessing = "none"
	PreprocessFoldDiacritics Preprocessing = "fold_diacritics"
)

// SearchField names a work attribute the fuzzy ranker scores against.
type SearchField struct {
	Name          string
	Preprocessing Preprocessing
}

// WorkType is a node of the work type hierarchy. ParentID 0 marks a root.
type WorkType struct {
	ID       int64
	Label    string
	ParentID int64
}

// Work is a catalog entry. An attribute lives in either Attributes
// (single value) or Lists (multiple values).
type Work struct {
	ID         string
	Attributes map[string]string
	Lists      map[string][]string
	Numerics   map[string]float64
	Categories []WorkType
}

// SearchParams selects a page of works. A nil Query browses in title order;
// a non-nil Query ranks by similarity and must not be blank.
type SearchParams struct {
	Query *string
	// Facets maps a facet name to the values to keep (any of them matches).
	Facets    map[string][]string
	StartYear *int
	EndYear   *int
	// Limit defaults to 20 when zero.
	Limit     int
	Offset    int
	Threshold *float64
}

// Hit is one work of a result page. Score is set for fuzzy searches only.
type Hit struct {
	Work
	Score *float64
}

// FacetValue is one bucket of a flat facet.
type FacetValue struct {
	Key   string
	Count int
}

// FacetNode is one node of the hierarchical facet. Count includes descendants.
type FacetNode struct {
	ID       int64
	Label    string
	Count    int
	Children []FacetNode
}

// SearchResult is one page of works plus facets over all matches.
type SearchResult struct {
	Count         int
	Limit         int
	Offset        int
	Hits          []Hit
	Facets        map[string][]FacetValue
	HierarchyName string
	Hierarchy     []FacetNode
}

// String returns a pointer to s, for SearchParams.Query.
func String(s string) *string { return &s }

// Int returns a pointer to i, for year bounds.
func Int(i int) *int { return &i }

// Float returns a pointer to f, for SearchParams.Threshold.
func Float(f float64) *float64 { return &f }
