// Package contract is the aggregate registered from the map form.
package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/cen-na/agricarte/internal/domain"
	"github.com/cen-na/agricarte/internal/domain/geo"
	"github.com/cen-na/agricarte/internal/domain/marker"
	"github.com/cen-na/agricarte/internal/domain/person"
	"github.com/cen-na/agricarte/internal/domain/search/filter"
	"github.com/cen-na/agricarte/internal/domain/siret"
)

// Placeholder fills unspecified labels in the marker snapshot.
const Placeholder = "Non spécifié"

// Contract is a registered contract with its company, farmer and referent.
type Contract struct {
	ID              string
	Siret           siret.Number
	NomSociete      string
	Agriculteur     person.Name
	Referent        person.Name
	TypeContrat     string
	TypeAgriculture string
	Surface         marker.Numeric
	SAU             marker.Numeric
	Position        geo.LatLng
	DatePriseEffet  string
	DateFin         string
	TypeProductions []string
	ProduitsFinis   []string
	TypeMilieux     []string
	NomSite         string
	CodeSite        string
	CreatedAt       time.Time
}

// Validate checks the fields the map and the filter rely on.
func (c *Contract) Validate() error {
	if strings.TrimSpace(c.NomSociete) == "" {
		return fmt.Errorf("%w: nom_societe is required", domain.ErrInvalidContract)
	}
	if !c.Position.Valid() || c.Position.IsOrigin() {
		return fmt.Errorf("%w: invalid coordinates %s", domain.ErrInvalidContract, c.Position)
	}
	if c.Agriculteur == (person.Name{}) {
		return fmt.Errorf("%w: agriculteur is required", domain.ErrInvalidContract)
	}
	if !filter.NumericValid(c.Surface.String()) {
		return fmt.Errorf("%w: surface_contractualisee %q is not a finite number", domain.ErrInvalidContract, c.Surface)
	}
	if !filter.NumericValid(c.SAU.String()) {
		return fmt.Errorf("%w: sau %q is not a finite number", domain.ErrInvalidContract, c.SAU)
	}
	if c.DatePriseEffet != "" {
		if _, ok := filter.ParseDate(c.DatePriseEffet); !ok {
			return fmt.Errorf("%w: date_prise_effet %q", domain.ErrInvalidContract, c.DatePriseEffet)
		}
	}
	if c.DateFin != "" {
		if _, ok := filter.ParseDate(c.DateFin); !ok {
			return fmt.Errorf("%w: date_fin %q", domain.ErrInvalidContract, c.DateFin)
		}
	}
	return nil
}

// MarkerData flattens the contract into the record shown on the map.
// Missing labels become Placeholder, people read "Prenom Nom", dates are YYYY-MM-DD.
func (c *Contract) MarkerData() marker.Data {
	productions := make([]marker.Production, 0, len(c.TypeProductions))
	for _, p := range c.TypeProductions {
		productions = append(productions, marker.Production{Type: p})
	}
	return marker.Data{
		ID:                     c.ID,
		Agriculteur:            orPlaceholder(displayName(c.Agriculteur)),
		NomSociete:             orPlaceholder(c.NomSociete),
		Referent:               orPlaceholder(displayName(c.Referent)),
		TypeContrat:            orPlaceholder(c.TypeContrat),
		TypeAgriculture:        orPlaceholder(c.TypeAgriculture),
		SurfaceContractualisee: numericOrPlaceholder(c.Surface),
		SAU:                    c.SAU,
		Latitude:               c.Position.Lat,
		Longitude:              c.Position.Lng,
		DatePriseEffet:         isoDate(c.DatePriseEffet),
		DateFin:                isoDate(c.DateFin),
		TypeProductions:        productions,
		ProduitsFinis:          c.ProduitsFinis,
		Siret:                  c.Siret.String(),
		NomSite:                orPlaceholder(c.NomSite),
		CodeSite:               orPlaceholder(c.CodeSite),
		TypeMilieux:            c.TypeMilieux,
	}
}

func displayName(n person.Name) string {
	return strings.TrimSpace(n.Prenom + " " + n.Nom)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

func numericOrPlaceholder(n marker.Numeric) marker.Numeric {
	if strings.TrimSpace(n.String()) == "" {
		return Placeholder
	}
	return n
}

func isoDate(s string) string {
	d, ok := filter.ParseDate(s)
	if !ok {
		return Placeholder
	}
	return d.Format("2006-01-02")
}
