package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
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
	corpus CorpusSizer
	cache  CachePinger
}

// New creates a Service. cache can be nil when result caching is disabled.
func New(corpus CorpusSizer, cache CachePinger) *Service {
	return &Service{corpus: corpus, cache: cache}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.corpus == nil || s.corpus.Len() == 0 {
		checks["corpus"] = CheckError
	} else {
		checks["corpus"] = CheckOK
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
