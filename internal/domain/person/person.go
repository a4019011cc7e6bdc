// Package person holds the agriculteur and referent entities and the name
// handling shared by their search widgets.
package person

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind distinguishes the two searchable person entities.
type Kind string

const (
	// Agriculteur is a farmer attached to a company.
	Agriculteur Kind = "agriculteur"
	// Referent is the contact person following a contract.
	Referent Kind = "referent"
)

// ParseKind validates a kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Agriculteur, Referent:
		return k, nil
	default:
		return "", fmt.Errorf("unknown person kind %q", s)
	}
}

// Person is a stored agriculteur or referent.
type Person struct {
	ID     string
	Kind   Kind
	Nom    string
	Prenom string
}

// New validates and creates a person.
func New(id string, kind Kind, nom, prenom string) (Person, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Person{}, err
	}
	nom, prenom = strings.TrimSpace(nom), strings.TrimSpace(prenom)
	if nom == "" && prenom == "" {
		return Person{}, fmt.Errorf("nom or prenom is required")
	}
	return Person{ID: id, Kind: kind, Nom: nom, Prenom: prenom}, nil
}

// Display returns "Prenom Nom", the form used on map markers.
func (p Person) Display() string {
	return strings.TrimSpace(p.Prenom + " " + p.Nom)
}

// Key identifies a person by kind and case-folded name.
func (p Person) Key() string {
	fold := cases.Fold()
	return string(p.Kind) + ":" + fold.String(p.Nom) + "|" + fold.String(p.Prenom)
}

// Matches reports whether term occurs, case-insensitively, in "Nom Prenom" or "Prenom Nom".
func (p Person) Matches(term string) bool {
	fold := cases.Fold()
	t := fold.String(strings.TrimSpace(term))
	if t == "" {
		return false
	}
	return strings.Contains(fold.String(p.Nom+" "+p.Prenom), t) ||
		strings.Contains(fold.String(p.Prenom+" "+p.Nom), t)
}

// SplitPolicy decides which token of a free-text term is the first name.
type SplitPolicy int

const (
	// PrenomFirst reads "Paul Durand" as prenom=Paul, nom=Durand.
	PrenomFirst SplitPolicy = iota
	// NomFirst reads "Durand Paul" as nom=Durand, prenom=Paul.
	NomFirst
)

func (p SplitPolicy) String() string {
	if p == NomFirst {
		return "nom_first"
	}
	return "prenom_first"
}

// Name is a nom/prenom pair.
type Name struct {
	Nom    string
	Prenom string
}

// Split cuts term at the first whitespace run. The first token goes to the
// field chosen by policy, the remainder to the other one.
func Split(term string, policy SplitPolicy) Name {
	parts := strings.Fields(term)
	if len(parts) == 0 {
		return Name{}
	}
	first, rest := parts[0], strings.Join(parts[1:], " ")
	if policy == NomFirst {
		return Name{Nom: first, Prenom: rest}
	}
	return Name{Nom: rest, Prenom: first}
}

// Capitalized upper-cases the first letter of each part and lower-cases the rest.
func (n Name) Capitalized() Name {
	return Name{Nom: Capitalize(n.Nom), Prenom: Capitalize(n.Prenom)}
}

// Capitalize upper-cases the first letter of s and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.French).String(string(r)) +
		cases.Lower(language.French).String(s[size:])
}
