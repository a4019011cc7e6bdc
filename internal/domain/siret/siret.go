// Package siret validates French establishment numbers and models the
// company data fetched from the SIRENE registry.
package siret

import (
	"fmt"
	"strings"

	"github.com/cen-na/agricarte/internal/domain"
)

// Length is the number of digits in a SIRET.
const Length = 14

// Placeholder is written for registry fields SIRENE leaves empty.
const Placeholder = "Non renseigné"

// Number is a validated SIRET.
type Number string

// Parse trims and validates a SIRET: exactly 14 ASCII digits.
func Parse(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if len(s) != Length {
		return "", fmt.Errorf("%w: %q must contain exactly %d digits", domain.ErrInvalidSiret, s, Length)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", fmt.Errorf("%w: %q must contain exactly %d digits", domain.ErrInvalidSiret, s, Length)
		}
	}
	return Number(s), nil
}

// Siren returns the 9-digit company prefix.
func (n Number) Siren() string { return string(n)[:9] }

func (n Number) String() string { return string(n) }

// Company is the establishment data used to auto-fill the contract form.
type Company struct {
	Siren                string
	Denomination         string
	ActivitePrincipale   string
	CategorieJuridique   string
	TrancheEffectif      string
	AdresseEtablissement string
}

// Address describes the establishment address parts returned by SIRENE.
type Address struct {
	NumeroVoie  string
	TypeVoie    string
	LibelleVoie string
	CodePostal  string
	Commune     string
}

// Format joins the non-empty parts with ", ".
func (a Address) Format() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.NumeroVoie, a.TypeVoie, a.LibelleVoie, a.CodePostal, a.Commune} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// OrPlaceholder returns s, or Placeholder when s is blank.
func OrPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// Farmer is an agriculteur already registered for the SIRET's company.
type Farmer struct {
	Nom    string
	Prenom string
}

// Lookup is a registry answer enriched with what the local store knows.
type Lookup struct {
	Company      Company
	ExistsInDB   bool
	Agriculteurs []Farmer
}

// ExistingContract answers whether a contract is already registered for a SIRET.
type ExistingContract struct {
	Exists     bool
	ContractID string
	NomSociete string
}
