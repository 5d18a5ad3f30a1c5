package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/facetdex/internal/domain/category"
	"github.com/kailas-cloud/facetdex/internal/domain/entity"
)

// Hash field layout of a stored entity.
const (
	fieldID         = "id"
	fieldCategories = "categories"
	attrPrefix      = "a:"
	numericPrefix   = "n:"
)

// Hash field layout of a stored work type.
const (
	fieldLabel  = "label"
	fieldParent = "parent"
)

// buildEntityFields converts an Entity into a flat map for HSET.
// Attributes are JSON-encoded so list values survive the round trip.
func buildEntityFields(e *entity.Entity) (map[string]string, error) {
	m := make(map[string]string, 2+len(e.Attributes())+len(e.Numerics()))
	m[fieldID] = e.ID()
	for name, v := range e.Attributes() {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode attribute %s: %w", name, err)
		}
		m[attrPrefix+name] = string(data)
	}
	for name, v := range e.Numerics() {
		m[numericPrefix+name] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	cats := e.Categories()
	if cats == nil {
		cats = []category.Tag{}
	}
	data, err := json.Marshal(cats)
	if err != nil {
		return nil, fmt.Errorf("encode categories: %w", err)
	}
	m[fieldCategories] = string(data)
	return m, nil
}

// parseEntityFields converts a flat hash map back into an Entity.
func parseEntityFields(m map[string]string) (entity.Entity, error) {
	id := m[fieldID]
	if id == "" {
		return entity.Entity{}, fmt.Errorf("entity hash without id")
	}

	attrs := make(map[string]entity.Value)
	numerics := make(map[string]float64)
	var cats []category.Tag

	for k, v := range m {
		switch {
		case k == fieldID:
		case k == fieldCategories:
			if err := json.Unmarshal([]byte(v), &cats); err != nil {
				return entity.Entity{}, fmt.Errorf("entity %s: decode categories: %w", id, err)
			}
		case strings.HasPrefix(k, attrPrefix):
			var val entity.Value
			if err := json.Unmarshal([]byte(v), &val); err != nil {
				return entity.Entity{}, fmt.Errorf("entity %s: decode %s: %w", id, k, err)
			}
			attrs[strings.TrimPrefix(k, attrPrefix)] = val
		case strings.HasPrefix(k, numericPrefix):
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return entity.Entity{}, fmt.Errorf("entity %s: decode %s: %w", id, k, err)
			}
			numerics[strings.TrimPrefix(k, numericPrefix)] = f
		}
	}

	return entity.Reconstruct(id, attrs, numerics, cats), nil
}

func buildWorkTypeFields(t category.Tag) map[string]string {
	return map[string]string{
		fieldID:     strconv.FormatInt(t.ID, 10),
		fieldLabel:  t.Label,
		fieldParent: strconv.FormatInt(t.ParentID, 10),
	}
}

func parseWorkTypeFields(m map[string]string) (category.Tag, error) {
	id, err := strconv.ParseInt(m[fieldID], 10, 64)
	if err != nil {
		return category.Tag{}, fmt.Errorf("decode work type id: %w", err)
	}
	var parent int64
	if p := m[fieldParent]; p != "" {
		if parent, err = strconv.ParseInt(p, 10, 64); err != nil {
			return category.Tag{}, fmt.Errorf("work type %d: decode parent: %w", id, err)
		}
	}
	return category.Tag{ID: id, Label: m[fieldLabel], ParentID: parent}, nil
}
