// Package contract registers contracts and serves the map snapshot built from them.
package contract

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cen-na/agricarte/internal/domain"
	domcon "github.com/cen-na/agricarte/internal/domain/contract"
	"github.com/cen-na/agricarte/internal/domain/marker"
	"github.com/cen-na/agricarte/internal/domain/person"
	"github.com/cen-na/agricarte/internal/domain/search/filter"
)

// FilterResult lists the markers kept by a server-side filter.
type FilterResult struct {
	IDs     []string
	Matched int
	Total   int
}

// Service handles contract registration and the marker snapshot.
type Service struct {
	repo    Repository
	persons PersonEnsurer
	now     func() time.Time
	logger  *zap.Logger
}

// New creates a contract service. logger can be nil.
func New(repo Repository, persons PersonEnsurer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, persons: persons, now: time.Now, logger: logger}
}

// Register validates c, registers its agriculteur and referent, then stores it.
// Person names are replaced by the stored spelling so repeated registrations
// of "LEROY marie" reuse the first "Leroy Marie".
func (s *Service) Register(ctx context.Context, c domcon.Contract) (domcon.Contract, error) {
	if err := c.Validate(); err != nil {
		return domcon.Contract{}, err
	}

	c, err := s.ensurePersons(ctx, c)
	if err != nil {
		return domcon.Contract{}, err
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return domcon.Contract{}, fmt.Errorf("create contract: %w", err)
	}

	s.logger.Info("contract registered",
		zap.String("id", created.ID),
		zap.String("siret", created.Siret.String()),
		zap.String("nom_societe", created.NomSociete),
	)
	return created, nil
}

// Get returns one contract.
func (s *Service) Get(ctx context.Context, id string) (domcon.Contract, error) {
	if id == "" {
		return domcon.Contract{}, domain.ErrNotFound
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return domcon.Contract{}, fmt.Errorf("get contract %s: %w", id, err)
	}
	return c, nil
}

// Update replaces contract id with c after the same checks as Register.
func (s *Service) Update(ctx context.Context, id string, c domcon.Contract) (domcon.Contract, error) {
	if id == "" {
		return domcon.Contract{}, domain.ErrNotFound
	}
	c.ID = id
	if err := c.Validate(); err != nil {
		return domcon.Contract{}, err
	}

	c, err := s.ensurePersons(ctx, c)
	if err != nil {
		return domcon.Contract{}, err
	}

	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return domcon.Contract{}, fmt.Errorf("update contract %s: %w", id, err)
	}

	s.logger.Info("contract updated",
		zap.String("id", updated.ID),
		zap.String("siret", updated.Siret.String()),
	)
	return updated, nil
}

// ensurePersons registers the agriculteur and the optional referent and
// takes their stored spelling.
func (s *Service) ensurePersons(ctx context.Context, c domcon.Contract) (domcon.Contract, error) {
	agri, err := s.persons.Ensure(ctx, person.Agriculteur, c.Agriculteur)
	if err != nil {
		return domcon.Contract{}, fmt.Errorf("register agriculteur: %w", err)
	}
	c.Agriculteur = person.Name{Nom: agri.Nom, Prenom: agri.Prenom}

	if c.Referent != (person.Name{}) {
		ref, err := s.persons.Ensure(ctx, person.Referent, c.Referent)
		if err != nil {
			return domcon.Contract{}, fmt.Errorf("register referent: %w", err)
		}
		c.Referent = person.Name{Nom: ref.Nom, Prenom: ref.Prenom}
	}
	return c, nil
}

// Markers returns the map snapshot, one record per contract.
func (s *Service) Markers(ctx context.Context) ([]marker.Data, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	out := make([]marker.Data, 0, len(all))
	for i := range all {
		out = append(out, all[i].MarkerData())
	}
	return out, nil
}

// Filter evaluates c against the snapshot, with the same decision the map applies.
func (s *Service) Filter(ctx context.Context, c filter.Criteria) (FilterResult, error) {
	if err := c.Validate(); err != nil {
		return FilterResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidCriteria, err)
	}

	data, err := s.Markers(ctx)
	if err != nil {
		return FilterResult{}, err
	}

	today := s.now()
	res := FilterResult{IDs: []string{}, Total: len(data)}
	for _, d := range data {
		if filter.Evaluate(d, c, today) {
			res.IDs = append(res.IDs, d.ID)
		}
	}
	res.Matched = len(res.IDs)
	return res, nil
}

// Delete removes a contract. Registered persons are kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete contract %s: %w", id, err)
	}
	s.logger.Info("contract deleted", zap.String("id", id))
	return nil
}
