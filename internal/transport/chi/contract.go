package chi

import (
	"context"

	"github.com/cen-na/agricarte/internal/domain/contract"
	"github.com/cen-na/agricarte/internal/domain/marker"
	"github.com/cen-na/agricarte/internal/domain/person"
	"github.com/cen-na/agricarte/internal/domain/search/filter"
	"github.com/cen-na/agricarte/internal/domain/search/result"
	"github.com/cen-na/agricarte/internal/domain/siret"
	"github.com/cen-na/agricarte/internal/domain/usage"
	contractuc "github.com/cen-na/agricarte/internal/usecase/contract"
	healthuc "github.com/cen-na/agricarte/internal/usecase/health"
)

// PersonSearcher answers the autocomplete endpoints.
type PersonSearcher interface {
	Search(ctx context.Context, kind person.Kind, term string) ([]result.Result, error)
}

// SiretResolver answers the SIRET endpoints.
type SiretResolver interface {
	Lookup(ctx context.Context, raw string) (siret.Lookup, error)
	CheckExisting(ctx context.Context, raw string) (siret.ExistingContract, error)
}

// ContractManager registers contracts and serves the map snapshot.
type ContractManager interface {
	Register(ctx context.Context, c contract.Contract) (contract.Contract, error)
	Get(ctx context.Context, id string) (contract.Contract, error)
	Update(ctx context.Context, id string, c contract.Contract) (contract.Contract, error)
	Markers(ctx context.Context) ([]marker.Data, error)
	Filter(ctx context.Context, c filter.Criteria) (contractuc.FilterResult, error)
	Delete(ctx context.Context, id string) error
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// UsageReporter reports SIRENE quota usage.
type UsageReporter interface {
	Report(ctx context.Context, period usage.Period) usage.Report
}
