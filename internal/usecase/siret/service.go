// Package siret resolves SIRET numbers into company data for the contract form.
package siret

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cen-na/agricarte/internal/domain/person"
	domsiret "github.com/cen-na/agricarte/internal/domain/siret"
)

// Service combines the registry answer with local contract data.
type Service struct {
	provider  Provider
	contracts ContractFinder
	logger    *zap.Logger
}

// New creates a SIRET service. logger can be nil.
func New(provider Provider, contracts ContractFinder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, contracts: contracts, logger: logger}
}

// Lookup validates raw, fetches the company from SIRENE and reports the
// agriculteurs already registered for it.
func (s *Service) Lookup(ctx context.Context, raw string) (domsiret.Lookup, error) {
	n, err := domsiret.Parse(raw)
	if err != nil {
		return domsiret.Lookup{}, err
	}

	company, err := s.provider.Lookup(ctx, n)
	if err != nil {
		return domsiret.Lookup{}, fmt.Errorf("lookup %s: %w", n, err)
	}

	out := domsiret.Lookup{Company: company, Agriculteurs: []domsiret.Farmer{}}

	found, err := s.contracts.BySiret(ctx, n)
	if err != nil {
		s.logger.Warn("siret enrichment failed", zap.String("siret", n.String()), zap.Error(err))
		return out, nil
	}

	out.ExistsInDB = len(found) > 0
	seen := make(map[string]struct{}, len(found))
	for _, c := range found {
		if c.Agriculteur == (person.Name{}) {
			continue
		}
		p := person.Person{Kind: person.Agriculteur, Nom: c.Agriculteur.Nom, Prenom: c.Agriculteur.Prenom}
		if _, dup := seen[p.Key()]; dup {
			continue
		}
		seen[p.Key()] = struct{}{}
		out.Agriculteurs = append(out.Agriculteurs, domsiret.Farmer{Nom: p.Nom, Prenom: p.Prenom})
	}
	return out, nil
}

// CheckExisting reports the oldest contract registered for raw, if any.
func (s *Service) CheckExisting(ctx context.Context, raw string) (domsiret.ExistingContract, error) {
	n, err := domsiret.Parse(raw)
	if err != nil {
		return domsiret.ExistingContract{}, err
	}

	found, err := s.contracts.BySiret(ctx, n)
	if err != nil {
		return domsiret.ExistingContract{}, fmt.Errorf("check existing %s: %w", n, err)
	}
	if len(found) == 0 {
		return domsiret.ExistingContract{}, nil
	}
	return domsiret.ExistingContract{
		Exists:     true,
		ContractID: found[0].ID,
		NomSociete: found[0].NomSociete,
	}, nil
}
