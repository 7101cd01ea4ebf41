package dlf

import (
	"context"
	"time"

	healthuc "github.com/kailas-cloud/dlf/internal/usecase/health"
)

// HealthStatus reports the search store and catalog.
// Status is "ok", "degraded" (one component down) or "error".
type HealthStatus struct {
	Status string
	Checks map[string]string // "search", "catalog" → "ok"/"error"
}

// Healthy reports whether every component answered.
func (h HealthStatus) Healthy() bool {
	return h.Status == string(healthuc.Healthy)
}

// Health checks every component and never fails; inspect the returned status.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)
	c.obs.observe("health", start, nil)

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
