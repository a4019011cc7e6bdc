package chi

import (
	"fmt"
	"strings"
	"time"

	"github.com/cen-na/agricarte/internal/domain/contract"
	"github.com/cen-na/agricarte/internal/domain/geo"
	"github.com/cen-na/agricarte/internal/domain/marker"
	"github.com/cen-na/agricarte/internal/domain/person"
	"github.com/cen-na/agricarte/internal/domain/search/filter"
	"github.com/cen-na/agricarte/internal/domain/search/result"
	"github.com/cen-na/agricarte/internal/domain/siret"
	"github.com/cen-na/agricarte/internal/domain/usage"
)

type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeValidationFailed  errorCode = "validation_failed"
	codeInvalidCriteria   errorCode = "invalid_criteria"
	codeInvalidSiret      errorCode = "invalid_siret"
	codeSiretNotFound     errorCode = "siret_not_found"
	codeSireneUnavailable errorCode = "sirene_unavailable"
	codeQuotaExceeded     errorCode = "sirene_quota_exceeded"
	codeNotFound          errorCode = "not_found"
	codeAlreadyExists     errorCode = "already_exists"
	codeUnauthorized      errorCode = "unauthorized"
	codeInternalError     errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// siretErrorResponse is the {"error": "..."} body the contract form reads.
type siretErrorResponse struct {
	Error string `json:"error"`
}

type searchRequest struct {
	SearchTerm string `json:"search_term"`
}

type agriculteurResponse struct {
	Display string `json:"display"`
	Nom     string `json:"nom"`
	Prenom  string `json:"prenom"`
}

type referentResponse struct {
	Nom    string `json:"nom"`
	Prenom string `json:"prenom"`
}

type siretRequest struct {
	Siret string `json:"siret"`
}

type farmerResponse struct {
	Nom    string `json:"nom"`
	Prenom string `json:"prenom"`
}

type siretResponse struct {
	Siren                string           `json:"siren"`
	Denomination         string           `json:"denomination"`
	ActivitePrincipale   string           `json:"activite_principale"`
	CategorieJuridique   string           `json:"categorie_juridique"`
	TrancheEffectif      string           `json:"tranche_effectif"`
	AdresseEtablissement string           `json:"adresse_etablissement"`
	ExistsInDB           bool             `json:"exists_in_db"`
	Agriculteurs         []farmerResponse `json:"agriculteurs"`
}

type existingContractResponse struct {
	Exists     bool   `json:"exists"`
	ContractID string `json:"contract_id"`
	NomSociete string `json:"nom_societe"`
}

type comparatorRequest struct {
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

type criteriaRequest struct {
	Agriculteur     string            `json:"agriculteur"`
	NomSociete      string            `json:"nom_societe"`
	Referent        string            `json:"referent"`
	TypeContrat     string            `json:"type_contrat"`
	TypeAgriculture string            `json:"type_agriculture"`
	TypeProduction  string            `json:"type_production"`
	ProduitFini     string            `json:"produit_fini"`
	Surface         comparatorRequest `json:"surface_contractualisee"`
	SAU             comparatorRequest `json:"sau"`
	ActiveOnly      bool              `json:"active_only"`
}

type filterResponse struct {
	IDs     []string `json:"ids"`
	Matched int      `json:"matched"`
	Total   int      `json:"total"`
}

type contractRequest struct {
	Siret           string         `json:"siret"`
	NomSociete      string         `json:"nom_societe"`
	NomAgri         string         `json:"nom_agri"`
	PrenomAgri      string         `json:"prenom_agri"`
	NomReferent     string         `json:"nom_referent"`
	PrenomReferent  string         `json:"prenom_referent"`
	TypeContrat     string         `json:"type_contrat"`
	TypeAgriculture string         `json:"type_agriculture"`
	Surface         marker.Numeric `json:"surface_contractualisee"`
	SAU             marker.Numeric `json:"sau"`
	Latitude        float64        `json:"latitude"`
	Longitude       float64        `json:"longitude"`
	DatePriseEffet  string         `json:"date_prise_effet"`
	DateFin         string         `json:"date_fin"`
	TypeProductions []string       `json:"type_productions"`
	ProduitsFinis   []string       `json:"produits_finis"`
	TypeMilieux     []string       `json:"type_milieux"`
	NomSite         string         `json:"nom_site"`
	CodeSite        string         `json:"code_site"`
}

// contractResponse carries the editable fields of a stored contract.
type contractResponse struct {
	ID string `json:"id"`
	contractRequest
	CreatedAt string `json:"created_at"`
}

func contractToResponse(c contract.Contract) contractResponse {
	return contractResponse{
		ID: c.ID,
		contractRequest: contractRequest{
			Siret:           c.Siret.String(),
			NomSociete:      c.NomSociete,
			NomAgri:         c.Agriculteur.Nom,
			PrenomAgri:      c.Agriculteur.Prenom,
			NomReferent:     c.Referent.Nom,
			PrenomReferent:  c.Referent.Prenom,
			TypeContrat:     c.TypeContrat,
			TypeAgriculture: c.TypeAgriculture,
			Surface:         c.Surface,
			SAU:             c.SAU,
			Latitude:        c.Position.Lat,
			Longitude:       c.Position.Lng,
			DatePriseEffet:  c.DatePriseEffet,
			DateFin:         c.DateFin,
			TypeProductions: c.TypeProductions,
			ProduitsFinis:   c.ProduitsFinis,
			TypeMilieux:     c.TypeMilieux,
			NomSite:         c.NomSite,
			CodeSite:        c.CodeSite,
		},
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type usageResponse struct {
	Period      string `json:"period"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	Limit       int64  `json:"limit"`
	Used        int64  `json:"used"`
	Remaining   int64  `json:"remaining"`
	Exhausted   bool   `json:"exhausted"`
}

func usageToResponse(r usage.Report) usageResponse {
	return usageResponse{
		Period:      string(r.Period),
		PeriodStart: r.Start.Format(time.RFC3339),
		PeriodEnd:   r.End.Format(time.RFC3339),
		Limit:       r.Limit,
		Used:        r.Used,
		Remaining:   r.Remaining,
		Exhausted:   r.Exhausted(),
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func agriculteursToResponse(rr []result.Result) []agriculteurResponse {
	out := make([]agriculteurResponse, len(rr))
	for i, r := range rr {
		out[i] = agriculteurResponse{Display: r.Display, Nom: r.Nom, Prenom: r.Prenom}
	}
	return out
}

func referentsToResponse(rr []result.Result) []referentResponse {
	out := make([]referentResponse, len(rr))
	for i, r := range rr {
		out[i] = referentResponse{Nom: r.Nom, Prenom: r.Prenom}
	}
	return out
}

func lookupToResponse(l siret.Lookup) siretResponse {
	farmers := make([]farmerResponse, len(l.Agriculteurs))
	for i, f := range l.Agriculteurs {
		farmers[i] = farmerResponse{Nom: f.Nom, Prenom: f.Prenom}
	}
	return siretResponse{
		Siren:                l.Company.Siren,
		Denomination:         l.Company.Denomination,
		ActivitePrincipale:   l.Company.ActivitePrincipale,
		CategorieJuridique:   l.Company.CategorieJuridique,
		TrancheEffectif:      l.Company.TrancheEffectif,
		AdresseEtablissement: l.Company.AdresseEtablissement,
		ExistsInDB:           l.ExistsInDB,
		Agriculteurs:         farmers,
	}
}

func (req criteriaRequest) toDomain() (filter.Criteria, error) {
	surface, err := filter.NewComparator(req.Surface.Operator, req.Surface.Value)
	if err != nil {
		return filter.Criteria{}, fmt.Errorf("surface_contractualisee: %w", err)
	}
	sau, err := filter.NewComparator(req.SAU.Operator, req.SAU.Value)
	if err != nil {
		return filter.Criteria{}, fmt.Errorf("sau: %w", err)
	}
	return filter.Criteria{
		Agriculteur:     req.Agriculteur,
		NomSociete:      req.NomSociete,
		Referent:        req.Referent,
		TypeContrat:     req.TypeContrat,
		TypeAgriculture: req.TypeAgriculture,
		TypeProduction:  req.TypeProduction,
		ProduitFini:     req.ProduitFini,
		Surface:         surface,
		SAU:             sau,
		ActiveOnly:      req.ActiveOnly,
	}, nil
}

func (req contractRequest) toDomain() (contract.Contract, error) {
	var n siret.Number
	if s := strings.TrimSpace(req.Siret); s != "" {
		parsed, err := siret.Parse(s)
		if err != nil {
			return contract.Contract{}, err
		}
		n = parsed
	}
	return contract.Contract{
		Siret:           n,
		NomSociete:      strings.TrimSpace(req.NomSociete),
		Agriculteur:     person.Name{Nom: strings.TrimSpace(req.NomAgri), Prenom: strings.TrimSpace(req.PrenomAgri)},
		Referent:        person.Name{Nom: strings.TrimSpace(req.NomReferent), Prenom: strings.TrimSpace(req.PrenomReferent)},
		TypeContrat:     req.TypeContrat,
		TypeAgriculture: req.TypeAgriculture,
		Surface:         req.Surface,
		SAU:             req.SAU,
		Position:        geo.LatLng{Lat: req.Latitude, Lng: req.Longitude},
		DatePriseEffet:  req.DatePriseEffet,
		DateFin:         req.DateFin,
		TypeProductions: req.TypeProductions,
		ProduitsFinis:   req.ProduitsFinis,
		TypeMilieux:     req.TypeMilieux,
		NomSite:         req.NomSite,
		CodeSite:        req.CodeSite,
	}, nil
}
