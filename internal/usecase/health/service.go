package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
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

// Component names reported in Report.Checks.
const (
	ComponentSearch  = "search"
	ComponentCatalog = "catalog"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// DefaultCheckTimeout bounds each component ping.
const DefaultCheckTimeout = 2 * time.Second

// Service coordinates health checks.
type Service struct {
	search  Pinger
	catalog Pinger
	timeout time.Duration
}

// New creates a Service. catalog can be nil.
func New(search, catalog Pinger) *Service {
	return &Service{search: search, catalog: catalog, timeout: DefaultCheckTimeout}
}

// Check pings all components concurrently, each bounded by the check timeout.
// A ping that does not answer in time counts as failed.
func (s *Service) Check(ctx context.Context) Report {
	targets := map[string]Pinger{ComponentSearch: s.search}
	if s.catalog != nil {
		targets[ComponentCatalog] = s.catalog
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, len(targets))
	)
	for name, p := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := s.ping(ctx, p)
			mu.Lock()
			checks[name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) ping(ctx context.Context, p Pinger) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
