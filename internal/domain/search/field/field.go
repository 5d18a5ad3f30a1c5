package field

import "fmt"

// Preprocessing is applied to a field value before scoring.
type Preprocessing string

// Preprocessing constants.
const (
	None           Preprocessing = "none"
	FoldDiacritics Preprocessing = "fold_diacritics"
)

// SearchField is an immutable value object naming an entity attribute to search.
type SearchField struct {
	name          string
	preprocessing Preprocessing
}

// New validates and creates a SearchField. An empty preprocessing means None.
func New(name string, p Preprocessing) (SearchField, error) {
	if name == "" {
		return SearchField{}, fmt.Errorf("search field name is required")
	}
	if len(name) > 64 {
		return SearchField{}, fmt.Errorf("search field name %q too long (max 64)", name)
	}
	if p == "" {
		p = None
	}
	if p != None && p != FoldDiacritics {
		return SearchField{}, fmt.Errorf("invalid preprocessing %q for %q", p, name)
	}
	return SearchField{name: name, preprocessing: p}, nil
}

// MustNew is New that panics on invalid input (static configuration only).
func MustNew(name string, p Preprocessing) SearchField {
	f, err := New(name, p)
	if err != nil {
		panic(err)
	}
	return f
}

// Name returns the attribute name.
func (f SearchField) Name() string { return f.name }

// Preprocessing returns the value preprocessing.
func (f SearchField) Preprocessing() Preprocessing { return f.preprocessing }

// Folds reports whether values of this field are diacritic-folded.
func (f SearchField) Folds() bool { return f.preprocessing == FoldDiacritics }
