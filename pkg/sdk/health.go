package facetdex

import (
	"context"
	"maps"
	"slices"

	healthuc "github.com/kailas-cloud/facetdex/internal/usecase/health"
)

// Aggregated health states.
const (
	HealthOK       = string(healthuc.Healthy)
	HealthDegraded = string(healthuc.Degraded)
	HealthError    = string(healthuc.Unhealthy)
)

// HealthStatus is the outcome of Client.Health. Checks maps "database" and
// "hierarchy" to "ok" or "error"; the hierarchy is not checked while the
// database is down.
type HealthStatus struct {
	Status string
	Checks map[string]string
}

// OK reports whether every check passed.
func (h HealthStatus) OK() bool { return h.Status == HealthOK }

// Components returns the checked component names in sorted order.
func (h HealthStatus) Components() []string {
	return slices.Sorted(maps.Keys(h.Checks))
}

// Health checks the database and the stored work type hierarchy.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	out := HealthStatus{
		Status: string(report.Status),
		Checks: make(map[string]string, len(report.Checks)),
	}
	for name, result := range report.Checks {
		out.Checks[name] = string(result)
	}
	return out
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
