package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means the store works but the registry does not:
	// the map still loads, SIRET auto-fill fails.
	Degraded Status = "degraded"
	// Unhealthy means the store is down.
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
	ComponentDatabase = "database"
	ComponentSirene   = "sirene"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db       DBPinger
	registry RegistryChecker
}

// New creates a Service. registry can be nil.
func New(db DBPinger, registry RegistryChecker) *Service {
	return &Service{db: db, registry: registry}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{ComponentDatabase: CheckOK}
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks[ComponentDatabase] = CheckError
		status = Unhealthy
	}

	if s.registry != nil {
		checks[ComponentSirene] = CheckOK
		if err := s.registry.HealthCheck(ctx); err != nil {
			checks[ComponentSirene] = CheckError
			if status == Healthy {
				status = Degraded
			}
		}
	}

	return Report{Status: status, Checks: checks}
}
