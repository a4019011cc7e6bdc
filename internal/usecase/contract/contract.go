package contract

import (
	"context"

	domcon "github.com/cen-na/agricarte/internal/domain/contract"
	"github.com/cen-na/agricarte/internal/domain/person"
)

// Repository defines the storage contract for contracts.
type Repository interface {
	Create(ctx context.Context, c domcon.Contract) (domcon.Contract, error)
	Get(ctx context.Context, id string) (domcon.Contract, error)
	Update(ctx context.Context, c domcon.Contract) (domcon.Contract, error)
	List(ctx context.Context) ([]domcon.Contract, error)
	Delete(ctx context.Context, id string) error
}

// PersonEnsurer returns the stored person for a name, registering it on first use.
type PersonEnsurer interface {
	Ensure(ctx context.Context, kind person.Kind, name person.Name) (person.Person, error)
}
