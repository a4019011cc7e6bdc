// Package person serves the agriculteur and referent autocomplete endpoints.
package person

import (
	"context"
	"errors"
	"fmt"

	"github.com/cen-na/agricarte/internal/domain"
	domper "github.com/cen-na/agricarte/internal/domain/person"
	"github.com/cen-na/agricarte/internal/domain/search/request"
	"github.com/cen-na/agricarte/internal/domain/search/result"
)

// Service searches and registers persons.
type Service struct {
	repo  Repository
	limit int
}

// New creates a person service returning at most request.DefaultLimit results.
func New(repo Repository) *Service {
	return &Service{repo: repo, limit: request.DefaultLimit}
}

// WithLimit overrides the maximum number of search results.
func (s *Service) WithLimit(n int) *Service {
	if n > 0 {
		s.limit = n
	}
	return s
}

// Search returns the persons of kind whose name contains term.
// Terms shorter than request.MinTermLength yield an empty list.
func (s *Service) Search(ctx context.Context, kind domper.Kind, term string) ([]result.Result, error) {
	q, err := request.New(term, s.limit)
	if err != nil {
		if errors.Is(err, domain.ErrTermTooShort) {
			return []result.Result{}, nil
		}
		return nil, err
	}

	found, err := s.repo.Search(ctx, kind, q)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", kind, err)
	}

	out := make([]result.Result, 0, len(found))
	for _, p := range found {
		out = append(out, result.New(p.Display(), p.Nom, p.Prenom))
	}
	return out, nil
}

// Ensure returns the stored person with this name, creating it when absent.
func (s *Service) Ensure(ctx context.Context, kind domper.Kind, name domper.Name) (domper.Person, error) {
	p, err := domper.New("", kind, name.Nom, name.Prenom)
	if err != nil {
		return domper.Person{}, err
	}
	stored, err := s.repo.Ensure(ctx, p)
	if err != nil {
		return domper.Person{}, fmt.Errorf("ensure %s: %w", kind, err)
	}
	return stored, nil
}
