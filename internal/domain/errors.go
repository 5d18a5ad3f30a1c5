package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidQuery signals an empty or whitespace-only search text.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidRequest signals a malformed request parameter.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrMalformedHierarchy signals a cycle or dangling parent in category data.
	ErrMalformedHierarchy = errors.New("malformed hierarchy")
	// ErrCollaboratorUnavailable signals a failing entity store or similarity primitive.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)

// HierarchyCycleError wraps ErrMalformedHierarchy with the ids visited before the repeat.
type HierarchyCycleError struct {
	Path []int64
}

func (e *HierarchyCycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("%s: cycle %s", ErrMalformedHierarchy.Error(), strings.Join(parts, " -> "))
}

func (e *HierarchyCycleError) Unwrap() error { return ErrMalformedHierarchy }

// NewHierarchyCycle creates a cycle error for the given walk.
func NewHierarchyCycle(path []int64) error {
	return &HierarchyCycleError{Path: append([]int64(nil), path...)}
}

// Unavailable wraps err as ErrCollaboratorUnavailable, keeping the cause.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrCollaboratorUnavailable, err)
}
