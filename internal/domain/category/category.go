// Package category holds the hierarchical category tag attached to catalog
// entities (work types in the literary catalog).
package category

import "fmt"

// NoParent marks a root category.
const NoParent int64 = 0

// Tag is one category a matched entity is tagged with, carrying its own
// label and parent pointer.
type Tag struct {
	ID       int64  `json:"id"`
	Label    string `json:"label"`
	ParentID int64  `json:"parent,omitempty"`
}

// HasParent reports whether the tag points to a parent category.
func (t Tag) HasParent() bool { return t.ParentID != NoParent }

// Validate checks that ids are positive.
func (t Tag) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("category id must be positive, got %d", t.ID)
	}
	if t.ParentID < 0 {
		return fmt.Errorf("category %d: parent id must not be negative, got %d", t.ID, t.ParentID)
	}
	return nil
}
