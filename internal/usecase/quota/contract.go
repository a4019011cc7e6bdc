package quota

import (
	"context"

	"github.com/cen-na/agricarte/internal/domain/siret"
)

// Store persists counters. IncrBy may be retried, so it must be additive.
type Store interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// Provider is the registry client being metered.
type Provider interface {
	Lookup(ctx context.Context, n siret.Number) (siret.Company, error)
}
