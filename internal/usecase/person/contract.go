package person

import (
	"context"

	domper "github.com/cen-na/agricarte/internal/domain/person"
	"github.com/cen-na/agricarte/internal/domain/search/request"
)

// Repository defines the storage contract for persons.
type Repository interface {
	Search(ctx context.Context, kind domper.Kind, q request.Query) ([]domper.Person, error)
	Ensure(ctx context.Context, p domper.Person) (domper.Person, error)
}
