package sirene

import "github.com/cen-na/agricarte/internal/domain/siret"

// siretResponse is the subset of GET /siret/{siret} agricarte reads.
type siretResponse struct {
	Etablissement *etablissement `json:"etablissement"`
}

type etablissement struct {
	Siren                         string      `json:"siren"`
	TrancheEffectifsEtablissement string      `json:"trancheEffectifsEtablissement"`
	UniteLegale                   uniteLegale `json:"uniteLegale"`
	AdresseEtablissement          adresse     `json:"adresseEtablissement"`
}

type uniteLegale struct {
	DenominationUniteLegale       string `json:"denominationUniteLegale"`
	ActivitePrincipaleUniteLegale string `json:"activitePrincipaleUniteLegale"`
	CategorieJuridiqueUniteLegale string `json:"categorieJuridiqueUniteLegale"`
}

type adresse struct {
	NumeroVoieEtablissement     string `json:"numeroVoieEtablissement"`
	TypeVoieEtablissement       string `json:"typeVoieEtablissement"`
	LibelleVoieEtablissement    string `json:"libelleVoieEtablissement"`
	CodePostalEtablissement     string `json:"codePostalEtablissement"`
	LibelleCommuneEtablissement string `json:"libelleCommuneEtablissement"`
}

func (e *etablissement) company() siret.Company {
	a := siret.Address{
		NumeroVoie:  e.AdresseEtablissement.NumeroVoieEtablissement,
		TypeVoie:    e.AdresseEtablissement.TypeVoieEtablissement,
		LibelleVoie: e.AdresseEtablissement.LibelleVoieEtablissement,
		CodePostal:  e.AdresseEtablissement.CodePostalEtablissement,
		Commune:     e.AdresseEtablissement.LibelleCommuneEtablissement,
	}
	return siret.Company{
		Siren:                siret.OrPlaceholder(e.Siren),
		Denomination:         siret.OrPlaceholder(e.UniteLegale.DenominationUniteLegale),
		ActivitePrincipale:   siret.OrPlaceholder(e.UniteLegale.ActivitePrincipaleUniteLegale),
		CategorieJuridique:   siret.OrPlaceholder(e.UniteLegale.CategorieJuridiqueUniteLegale),
		TrancheEffectif:      siret.OrPlaceholder(e.TrancheEffectifsEtablissement),
		AdresseEtablissement: a.Format(),
	}
}
