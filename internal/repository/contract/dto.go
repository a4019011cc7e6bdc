package contract

import (
	"encoding/json"
	"fmt"
	"time"

	domcon "github.com/cen-na/agricarte/internal/domain/contract"
	"github.com/cen-na/agricarte/internal/domain/geo"
	"github.com/cen-na/agricarte/internal/domain/marker"
	"github.com/cen-na/agricarte/internal/domain/person"
	"github.com/cen-na/agricarte/internal/domain/siret"
)

// nameRow is the stored form of a nom/prenom pair.
type nameRow struct {
	Nom    string `json:"nom"`
	Prenom string `json:"prenom"`
}

// contractRow is the JSON document stored for each contract.
type contractRow struct {
	ID              string         `json:"id"`
	Siret           string         `json:"siret,omitempty"`
	NomSociete      string         `json:"nom_societe"`
	Agriculteur     nameRow        `json:"agriculteur"`
	Referent        nameRow        `json:"referent"`
	TypeContrat     string         `json:"type_contrat,omitempty"`
	TypeAgriculture string         `json:"type_agriculture,omitempty"`
	Surface         marker.Numeric `json:"surface_contractualisee"`
	SAU             marker.Numeric `json:"sau"`
	Latitude        float64        `json:"latitude"`
	Longitude       float64        `json:"longitude"`
	DatePriseEffet  string         `json:"date_prise_effet,omitempty"`
	DateFin         string         `json:"date_fin,omitempty"`
	TypeProductions []string       `json:"type_productions,omitempty"`
	ProduitsFinis   []string       `json:"produits_finis,omitempty"`
	TypeMilieux     []string       `json:"type_milieux,omitempty"`
	NomSite         string         `json:"nom_site,omitempty"`
	CodeSite        string         `json:"code_site,omitempty"`
	CreatedAt       int64          `json:"created_at"`
}

func contractToJSON(c domcon.Contract) ([]byte, error) {
	row := contractRow{
		ID:              c.ID,
		Siret:           c.Siret.String(),
		NomSociete:      c.NomSociete,
		Agriculteur:     nameRow(c.Agriculteur),
		Referent:        nameRow(c.Referent),
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
		CreatedAt:       c.CreatedAt.UnixMilli(),
	}
	data, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("marshal contract %s: %w", c.ID, err)
	}
	return data, nil
}

func contractFromJSON(data []byte) (domcon.Contract, error) {
	var row contractRow
	if err := json.Unmarshal(data, &row); err != nil {
		return domcon.Contract{}, fmt.Errorf("unmarshal contract: %w", err)
	}
	return domcon.Contract{
		ID:              row.ID,
		Siret:           siret.Number(row.Siret),
		NomSociete:      row.NomSociete,
		Agriculteur:     person.Name(row.Agriculteur),
		Referent:        person.Name(row.Referent),
		TypeContrat:     row.TypeContrat,
		TypeAgriculture: row.TypeAgriculture,
		Surface:         row.Surface,
		SAU:             row.SAU,
		Position:        geo.LatLng{Lat: row.Latitude, Lng: row.Longitude},
		DatePriseEffet:  row.DatePriseEffet,
		DateFin:         row.DateFin,
		TypeProductions: row.TypeProductions,
		ProduitsFinis:   row.ProduitsFinis,
		TypeMilieux:     row.TypeMilieux,
		NomSite:         row.NomSite,
		CodeSite:        row.CodeSite,
		CreatedAt:       time.UnixMilli(row.CreatedAt).UTC(),
	}, nil
}
