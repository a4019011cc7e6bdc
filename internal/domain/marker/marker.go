// Package marker models map pins and the contract record attached to each of them.
package marker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cen-na/agricarte/internal/domain/geo"
)

// Opacity values applied to pins.
const (
	Visible float64 = 1
	Hidden  float64 = 0
)

// Pin is the map-widget handle of a marker.
type Pin interface {
	SetOpacity(opacity float64)
	SetLatLng(pos geo.LatLng)
}

// Marker pairs a pin with its read-only contract data.
type Marker struct {
	ID   string
	Pin  Pin
	Data Data
}

// Position returns the true coordinates of the marker.
func (m Marker) Position() geo.LatLng { return m.Data.Position() }

// Data is the flat contract record carried by a marker.
type Data struct {
	ID                     string       `json:"id,omitempty"`
	Agriculteur            string       `json:"agriculteur"`
	NomSociete             string       `json:"nom_societe"`
	Referent               string       `json:"referent"`
	TypeContrat            string       `json:"type_contrat"`
	TypeAgriculture        string       `json:"type_agriculture"`
	SurfaceContractualisee Numeric      `json:"surface_contractualisee"`
	SAU                    Numeric      `json:"sau"`
	Latitude               float64      `json:"latitude"`
	Longitude              float64      `json:"longitude"`
	DatePriseEffet         string       `json:"date_prise_effet"`
	DateFin                string       `json:"date_fin"`
	TypeProductions        []Production `json:"type_productions"`
	ProduitsFinis          []string     `json:"produits_finis"`
	Siret                  string       `json:"siret,omitempty"`
	NomSite                string       `json:"nom_site,omitempty"`
	CodeSite               string       `json:"code_site,omitempty"`
	TypeMilieux            []string     `json:"type_milieux,omitempty"`
}

// Position returns the record coordinates.
func (d Data) Position() geo.LatLng {
	return geo.LatLng{Lat: d.Latitude, Lng: d.Longitude}
}

// Field names a free-text column of Data usable for autocomplete.
type Field string

const (
	// FieldAgriculteur is the farmer display name.
	FieldAgriculteur Field = "agriculteur"
	// FieldNomSociete is the company name.
	FieldNomSociete Field = "nom_societe"
	// FieldReferent is the referent display name.
	FieldReferent Field = "referent"
	// FieldTypeContrat is the contract type label.
	FieldTypeContrat Field = "type_contrat"
	// FieldTypeAgriculture is the farming type label.
	FieldTypeAgriculture Field = "type_agriculture"
)

// ParseField validates a field name.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldAgriculteur, FieldNomSociete, FieldReferent, FieldTypeContrat, FieldTypeAgriculture:
		return f, nil
	default:
		return "", fmt.Errorf("unknown marker field %q", s)
	}
}

// Text returns the value of a free-text field.
func (d Data) Text(f Field) string {
	switch f {
	case FieldAgriculteur:
		return d.Agriculteur
	case FieldNomSociete:
		return d.NomSociete
	case FieldReferent:
		return d.Referent
	case FieldTypeContrat:
		return d.TypeContrat
	case FieldTypeAgriculture:
		return d.TypeAgriculture
	default:
		return ""
	}
}

// Production is one element of type_productions. The backend sends either
// {"type": "..."} records or bare strings; Record remembers which.
type Production struct {
	Type   string
	Record bool
}

// UnmarshalJSON accepts a record, a string or any scalar.
func (p *Production) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*p = Production{}
	case b[0] == '{':
		var rec struct {
			Type any `json:"type"`
		}
		if err := json.Unmarshal(b, &rec); err != nil {
			return fmt.Errorf("decode production record: %w", err)
		}
		*p = Production{Type: scalarString(rec.Type), Record: true}
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decode production: %w", err)
		}
		*p = Production{Type: s}
	default:
		*p = Production{Type: string(b)}
	}
	return nil
}

// MarshalJSON writes the element back in the shape it was read.
func (p Production) MarshalJSON() ([]byte, error) {
	if p.Record {
		return json.Marshal(struct {
			Type string `json:"type"`
		}{p.Type})
	}
	return json.Marshal(p.Type)
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Numeric is a number-ish column kept as raw text: the backend sends numbers,
// numeric strings or placeholders such as "Non spécifié".
type Numeric string

// UnmarshalJSON accepts a JSON number, a string or null.
func (n *Numeric) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*n = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decode numeric: %w", err)
		}
		*n = Numeric(s)
	default:
		*n = Numeric(b)
	}
	return nil
}

// MarshalJSON writes plain numbers as JSON numbers and everything else as strings.
func (n Numeric) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil && json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	return json.Marshal(string(n))
}

// String returns the raw text.
func (n Numeric) String() string { return string(n) }
