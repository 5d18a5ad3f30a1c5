package entity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/facetdex/internal/domain/category"
)

// Value is an attribute value: a scalar string, a list of strings, or null.
type Value struct {
	items []string
	multi bool
	set   bool
}

// Scalar creates a single-valued attribute.
func Scalar(s string) Value {
	return Value{items: []string{s}, set: true}
}

// List creates a multi-valued attribute. Elements are copied.
func List(items ...string) Value {
	return Value{items: append([]string{}, items...), multi: true, set: true}
}

// Null is the absent value.
func Null() Value { return Value{} }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return !v.set }

// IsList reports whether the value is multi-valued.
func (v Value) IsList() bool { return v.multi }

// Items returns the elements (one for a scalar, none for null).
func (v Value) Items() []string { return v.items }

// Text returns the value as searchable text; list elements are joined by a space.
func (v Value) Text() string {
	if len(v.items) == 1 {
		return v.items[0]
	}
	return strings.Join(v.items, " ")
}

// MarshalJSON encodes a scalar as a string, a list as an array, null as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case !v.set:
		return []byte("null"), nil
	case v.multi:
		return json.Marshal(v.items)
	default:
		return json.Marshal(v.items[0])
	}
}

// UnmarshalJSON decodes a string, an array of strings (nested arrays are
// flattened), or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	switch t := raw.(type) {
	case nil:
		*v = Null()
	case string:
		*v = Scalar(t)
	case []any:
		items, err := flatten(t)
		if err != nil {
			return err
		}
		*v = List(items...)
	default:
		return fmt.Errorf("decode value: unsupported type %T", raw)
	}
	return nil
}

func flatten(in []any) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, e := range in {
		switch t := e.(type) {
		case string:
			out = append(out, t)
		case []any:
			nested, err := flatten(t)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		case nil:
		default:
			return nil, fmt.Errorf("decode value: unsupported element type %T", e)
		}
	}
	return out, nil
}

// Entity is a catalog record as seen by the search engine (immutable value object).
type Entity struct {
	id         string
	attributes map[string]Value
	numerics   map[string]float64
	categories []category.Tag
}

// New validates and creates an Entity.
func New(
	id string, attributes map[string]Value, numerics map[string]float64, categories []category.Tag,
) (Entity, error) {
	if id == "" {
		return Entity{}, fmt.Errorf("entity ID is required")
	}
	for _, c := range categories {
		if err := c.Validate(); err != nil {
			return Entity{}, fmt.Errorf("entity %s: %w", id, err)
		}
	}
	cats := append([]category.Tag(nil), categories...)
	return Reconstruct(id, cloneValues(attributes), cloneNumerics(numerics), cats), nil
}

// Reconstruct creates an Entity without validation (storage hydration).
func Reconstruct(
	id string, attributes map[string]Value, numerics map[string]float64, categories []category.Tag,
) Entity {
	return Entity{id: id, attributes: attributes, numerics: numerics, categories: categories}
}

// ID returns the entity identifier.
func (e *Entity) ID() string { return e.id }

// Attribute returns the named attribute or Null.
func (e *Entity) Attribute(name string) Value { return e.attributes[name] }

// Attributes returns all attributes.
func (e *Entity) Attributes() map[string]Value { return e.attributes }

// Numeric returns the named numeric attribute.
func (e *Entity) Numeric(name string) (float64, bool) {
	v, ok := e.numerics[name]
	return v, ok
}

// Numerics returns all numeric attributes.
func (e *Entity) Numerics() map[string]float64 { return e.numerics }

// Categories returns the hierarchical category tags.
func (e *Entity) Categories() []category.Tag { return e.categories }

func cloneValues(m map[string]Value) map[string]Value {
	if m == nil {
		return nil
	}
	c := make(map[string]Value, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func cloneNumerics(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	c := make(map[string]float64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
