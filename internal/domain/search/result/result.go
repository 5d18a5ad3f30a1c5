package result

import "github.com/kailas-cloud/facetdex/internal/domain/entity"

// Ranked is a single fuzzy search hit.
type Ranked struct {
	entity entity.Entity
	score  float64
}

// New creates a ranked result.
func New(e entity.Entity, score float64) Ranked {
	return Ranked{entity: e, score: score}
}

// Entity returns the matched entity.
func (r *Ranked) Entity() entity.Entity { return r.entity }

// ID returns the matched entity's identifier.
func (r *Ranked) ID() string { return r.entity.ID() }

// Score returns the best similarity over all token/field pairs.
func (r *Ranked) Score() float64 { return r.score }
