package health

import "context"

// DBPinger checks store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// RegistryChecker checks that the SIRENE registry answers.
type RegistryChecker interface {
	HealthCheck(ctx context.Context) error
}
