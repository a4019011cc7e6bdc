package agricarte

import (
	"time"

	"github.com/cen-na/agricarte/internal/domain/geo"
	"github.com/cen-na/agricarte/internal/domain/marker"
	"github.com/cen-na/agricarte/internal/domain/person"
	"github.com/cen-na/agricarte/internal/domain/search/filter"
	"github.com/cen-na/agricarte/internal/domain/search/result"
	"github.com/cen-na/agricarte/internal/domain/siret"
)

// Domain types shared with the service.
type (
	// Result is a person returned by an autocomplete endpoint.
	Result = result.Result
	// Name is a nom/prenom pair.
	Name = person.Name
	// PersonKind tells agriculteurs and referents apart.
	PersonKind = person.Kind
	// SplitPolicy decides which token of a typed term is the prenom.
	SplitPolicy = person.SplitPolicy
	// LatLng is a map position.
	LatLng = geo.LatLng
	// MarkerData is the contract record carried by a map marker.
	MarkerData = marker.Data
	// Marker pairs a pin with its record.
	Marker = marker.Marker
	// Pin is the map-widget handle of a marker.
	Pin = marker.Pin
	// Field names a text column of MarkerData.
	Field = marker.Field
	// Numeric is a number-ish column kept as raw text.
	Numeric = marker.Numeric
	// Criteria is a conjunction of filter constraints.
	Criteria = filter.Criteria
	// Comparator is a numeric constraint.
	Comparator = filter.Comparator
	// Operator is a numeric comparison.
	Operator = filter.Operator
	// Company is the SIRENE establishment data.
	Company = siret.Company
	// Farmer is an agriculteur already registered for a SIRET.
	Farmer = siret.Farmer
	// SiretLookup is a registry answer enriched with local data.
	SiretLookup = siret.Lookup
	// ExistingContract answers whether a SIRET already has a contract.
	ExistingContract = siret.ExistingContract
)

// Person kinds.
const (
	AgriculteurKind = person.Agriculteur
	ReferentKind    = person.Referent
)

// Split policies.
const (
	PrenomFirst = person.PrenomFirst
	NomFirst    = person.NomFirst
)

// Numeric operators.
const (
	Greater = filter.Greater
	Less    = filter.Less
)

// FilterResult lists the markers kept by a server-side filter.
type FilterResult struct {
	IDs     []string `json:"ids"`
	Matched int      `json:"matched"`
	Total   int      `json:"total"`
}

// ContractInput is the payload of CreateContract.
type ContractInput struct {
	Siret           string   `json:"siret,omitempty"`
	NomSociete      string   `json:"nom_societe"`
	NomAgri         string   `json:"nom_agri"`
	PrenomAgri      string   `json:"prenom_agri"`
	NomReferent     string   `json:"nom_referent,omitempty"`
	PrenomReferent  string   `json:"prenom_referent,omitempty"`
	TypeContrat     string   `json:"type_contrat,omitempty"`
	TypeAgriculture string   `json:"type_agriculture,omitempty"`
	Surface         Numeric  `json:"surface_contractualisee,omitempty"`
	SAU             Numeric  `json:"sau,omitempty"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	DatePriseEffet  string   `json:"date_prise_effet,omitempty"`
	DateFin         string   `json:"date_fin,omitempty"`
	TypeProductions []string `json:"type_productions,omitempty"`
	ProduitsFinis   []string `json:"produits_finis,omitempty"`
	TypeMilieux     []string `json:"type_milieux,omitempty"`
	NomSite         string   `json:"nom_site,omitempty"`
	CodeSite        string   `json:"code_site,omitempty"`
}

// Contract is a stored contract as returned by GetContract.
type Contract struct {
	ID string `json:"id"`
	ContractInput
	CreatedAt time.Time `json:"created_at"`
}

// UsageReport is the SIRENE quota state for one period.
// Limit 0 and Remaining -1 mean unlimited.
type UsageReport struct {
	Period      string    `json:"period"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Limit       int64     `json:"limit"`
	Used        int64     `json:"used"`
	Remaining   int64     `json:"remaining"`
	Exhausted   bool      `json:"exhausted"`
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded", "error"
	Checks map[string]string `json:"checks"` // component → "ok"/"error"
}

// wire formats

type searchBody struct {
	SearchTerm string `json:"search_term"`
}

type personBody struct {
	Display string `json:"display"`
	Nom     string `json:"nom"`
	Prenom  string `json:"prenom"`
}

type siretBody struct {
	Siret string `json:"siret"`
}

type farmerBody struct {
	Nom    string `json:"nom"`
	Prenom string `json:"prenom"`
}

type lookupBody struct {
	Siren                string       `json:"siren"`
	Denomination         string       `json:"denomination"`
	ActivitePrincipale   string       `json:"activite_principale"`
	CategorieJuridique   string       `json:"categorie_juridique"`
	TrancheEffectif      string       `json:"tranche_effectif"`
	AdresseEtablissement string       `json:"adresse_etablissement"`
	ExistsInDB           bool         `json:"exists_in_db"`
	Agriculteurs         []farmerBody `json:"agriculteurs"`
}

type existingBody struct {
	Exists     bool   `json:"exists"`
	ContractID string `json:"contract_id"`
	NomSociete string `json:"nom_societe"`
}

type comparatorBody struct {
	Operator string `json:"operator,omitempty"`
	Value    string `json:"value,omitempty"`
}

type criteriaBody struct {
	Agriculteur     string         `json:"agriculteur,omitempty"`
	NomSociete      string         `json:"nom_societe,omitempty"`
	Referent        string         `json:"referent,omitempty"`
	TypeContrat     string         `json:"type_contrat,omitempty"`
	TypeAgriculture string         `json:"type_agriculture,omitempty"`
	TypeProduction  string         `json:"type_production,omitempty"`
	ProduitFini     string         `json:"produit_fini,omitempty"`
	Surface         comparatorBody `json:"surface_contractualisee"`
	SAU             comparatorBody `json:"sau"`
	ActiveOnly      bool           `json:"active_only,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func criteriaToBody(c Criteria) criteriaBody {
	return criteriaBody{
		Agriculteur:     c.Agriculteur,
		NomSociete:      c.NomSociete,
		Referent:        c.Referent,
		TypeContrat:     c.TypeContrat,
		TypeAgriculture: c.TypeAgriculture,
		TypeProduction:  c.TypeProduction,
		ProduitFini:     c.ProduitFini,
		Surface:         comparatorBody{Operator: string(c.Surface.Operator), Value: c.Surface.Value},
		SAU:             comparatorBody{Operator: string(c.SAU.Operator), Value: c.SAU.Value},
		ActiveOnly:      c.ActiveOnly,
	}
}

func (b lookupBody) toLookup() SiretLookup {
	farmers := make([]Farmer, len(b.Agriculteurs))
	for i, f := range b.Agriculteurs {
		farmers[i] = Farmer{Nom: f.Nom, Prenom: f.Prenom}
	}
	return SiretLookup{
		Company: Company{
			Siren:                b.Siren,
			Denomination:         b.Denomination,
			ActivitePrincipale:   b.ActivitePrincipale,
			CategorieJuridique:   b.CategorieJuridique,
			TrancheEffectif:      b.TrancheEffectif,
			AdresseEtablissement: b.AdresseEtablissement,
		},
		ExistsInDB:   b.ExistsInDB,
		Agriculteurs: farmers,
	}
}
