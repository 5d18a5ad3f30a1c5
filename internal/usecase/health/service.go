package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the store is up but catalog data is inconsistent.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	hierarchy HierarchyChecker
}

// New creates a Service. hierarchy can be nil.
func New(db DBPinger, hierarchy HierarchyChecker) *Service {
	return &Service{db: db, hierarchy: hierarchy}
}

// Check runs health checks against all components. The hierarchy check is
// skipped while the store is down.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks["database"] = CheckOK

	status := Healthy
	if s.hierarchy != nil {
		if err := s.hierarchy.CheckHierarchy(ctx); err != nil {
			checks["hierarchy"] = CheckError
			status = Degraded
		} else {
			checks["hierarchy"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
