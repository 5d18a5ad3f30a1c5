package facet

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/category"
)

// Node is a category in the rolled-up facet forest.
type Node struct {
	ID         int64   `json:"id"`
	Label      string  `json:"key"`
	OwnCount   int     `json:"-"`
	TotalCount int     `json:"count"`
	ParentID   int64   `json:"-"`
	Children   []*Node `json:"children"`
}

// AncestorResolver looks up a category by id. A missing category is
// reported as domain.ErrNotFound.
type AncestorResolver interface {
	ResolveAncestor(ctx context.Context, id int64) (category.Tag, error)
}

// hierarchy is the per-call node table.
type hierarchy struct {
	nodes map[int64]*Node
	order []int64
}

func (h *hierarchy) insert(t category.Tag) *Node {
	n := &Node{ID: t.ID, Label: t.Label, ParentID: t.ParentID, Children: []*Node{}}
	h.nodes[t.ID] = n
	h.order = append(h.order, t.ID)
	return n
}

// AggregateHierarchy counts tag occurrences and rolls them up the category
// tree. Ancestors that were never tagged directly are resolved and inserted
// with an own count of zero. A tag occurring on several levels of the same
// branch is counted on each of them.
//
// Roots and children are returned in first-seen order. Cycles and dangling
// parents fail with domain.ErrMalformedHierarchy; resolver failures with
// domain.ErrCollaboratorUnavailable.
func AggregateHierarchy(ctx context.Context, tags []category.Tag, resolver AncestorResolver) ([]*Node, error) {
	h := &hierarchy{nodes: make(map[int64]*Node)}
	for _, t := range tags {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedHierarchy, err)
		}
		n, ok := h.nodes[t.ID]
		if !ok {
			n = h.insert(t)
		}
		n.OwnCount++
	}

	tagged := append([]int64(nil), h.order...)
	for _, id := range tagged {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("aggregate hierarchy: %w", err)
		}
		if err := h.walkUp(ctx, h.nodes[id], resolver); err != nil {
			return nil, err
		}
	}

	if err := h.validate(); err != nil {
		return nil, err
	}
	return h.forest(), nil
}

// walkUp inserts the missing ancestors of start until a root or a known node.
func (h *hierarchy) walkUp(ctx context.Context, start *Node, resolver AncestorResolver) error {
	visited := map[int64]bool{start.ID: true}
	path := []int64{start.ID}

	for cur := start; cur.ParentID != category.NoParent; {
		parent := cur.ParentID
		if visited[parent] {
			return domain.NewHierarchyCycle(append(path, parent))
		}
		if _, ok := h.nodes[parent]; ok {
			return nil
		}

		tag, err := resolver.ResolveAncestor(ctx, parent)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("%w: parent %d of %d does not exist", domain.ErrMalformedHierarchy, parent, cur.ID)
		case err != nil:
			return domain.Unavailable(fmt.Sprintf("resolve ancestor %d", parent), err)
		}
		if tag.ID != parent || tag.Validate() != nil {
			return fmt.Errorf("%w: ancestor %d resolved as %+v", domain.ErrMalformedHierarchy, parent, tag)
		}

		visited[parent] = true
		path = append(path, parent)
		cur = h.insert(tag)
	}
	return nil
}

// validate checks that every parent chain ends at a root.
func (h *hierarchy) validate() error {
	rooted := make(map[int64]bool, len(h.nodes))
	for _, id := range h.order {
		var path []int64
		onPath := make(map[int64]bool)
		for cur := id; cur != category.NoParent && !rooted[cur]; {
			if onPath[cur] {
				return domain.NewHierarchyCycle(append(path, cur))
			}
			n, ok := h.nodes[cur]
			if !ok {
				return fmt.Errorf("%w: dangling parent %d", domain.ErrMalformedHierarchy, cur)
			}
			onPath[cur] = true
			path = append(path, cur)
			cur = n.ParentID
		}
		for _, p := range path {
			rooted[p] = true
		}
	}
	return nil
}

func (h *hierarchy) forest() []*Node {
	roots := make([]*Node, 0)
	for _, id := range h.order {
		n := h.nodes[id]
		if n.ParentID == category.NoParent {
			roots = append(roots, n)
			continue
		}
		p := h.nodes[n.ParentID]
		p.Children = append(p.Children, n)
	}

	totals := make(map[int64]int, len(h.nodes))
	var total func(n *Node) int
	total = func(n *Node) int {
		if t, ok := totals[n.ID]; ok {
			return t
		}
		t := n.OwnCount
		for _, c := range n.Children {
			t += total(c)
		}
		totals[n.ID] = t
		n.TotalCount = t
		return t
	}
	for _, r := range roots {
		total(r)
	}
	return roots
}
