// Package facet computes categorical summaries over a result set.
package facet

import "github.com/kailas-cloud/facetdex/internal/domain/entity"

// Value is one bucket of a flat facet.
type Value struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// AggregateFlat counts attribute values across entities. Scalars count once,
// list elements individually, nulls are skipped. Keys are compared exactly
// and returned in first-seen order.
func AggregateFlat(values []entity.Value) []Value {
	out := make([]Value, 0)
	index := make(map[string]int)
	for _, v := range values {
		for _, key := range v.Items() {
			if i, ok := index[key]; ok {
				out[i].Count++
				continue
			}
			index[key] = len(out)
			out = append(out, Value{Key: key, Count: 1})
		}
	}
	return out
}
