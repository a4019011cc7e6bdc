package siret

import (
	"context"

	domcon "github.com/cen-na/agricarte/internal/domain/contract"
	domsiret "github.com/cen-na/agricarte/internal/domain/siret"
)

// Provider fetches establishment data from the SIRENE registry.
type Provider interface {
	Lookup(ctx context.Context, n domsiret.Number) (domsiret.Company, error)
}

// ContractFinder lists the contracts registered for a SIRET, oldest first.
type ContractFinder interface {
	BySiret(ctx context.Context, n domsiret.Number) ([]domcon.Contract, error)
}
