package health

import "context"

// DBPinger checks entity store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// HierarchyChecker verifies that stored categories form a forest.
type HierarchyChecker interface {
	CheckHierarchy(ctx context.Context) error
}
