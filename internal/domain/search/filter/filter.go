// Package filter decides whether a marker record satisfies the map search criteria.
package filter

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/cen-na/agricarte/internal/domain/marker"
)

// Operator is the comparison applied to numeric columns.
type Operator string

const (
	// Greater keeps records strictly greater than the threshold.
	Greater Operator = ">"
	// Less keeps records strictly less than the threshold.
	Less Operator = "<"
)

// ParseOperator validates an operator. Empty defaults to Greater.
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(strings.TrimSpace(s)); op {
	case "":
		return Greater, nil
	case Greater, Less:
		return op, nil
	default:
		return "", fmt.Errorf("unknown operator %q (want > or <)", s)
	}
}

// Comparator is a numeric constraint. It is inactive unless Value starts with a number.
type Comparator struct {
	Operator Operator
	Value    string
}

// NewComparator validates and creates a Comparator.
func NewComparator(op, value string) (Comparator, error) {
	o, err := ParseOperator(op)
	if err != nil {
		return Comparator{}, err
	}
	return Comparator{Operator: o, Value: strings.TrimSpace(value)}, nil
}

// Active reports whether the comparator constrains anything.
func (c Comparator) Active() bool {
	_, ok := parseNumber(c.Value)
	return ok
}

// accepts checks raw data against the threshold. emptyAsZero treats blank data as 0.
func (c Comparator) accepts(raw string, emptyAsZero bool) bool {
	threshold, ok := parseNumber(c.Value)
	if !ok {
		return true
	}
	s := strings.TrimSpace(raw)
	if s == "" && emptyAsZero {
		s = "0"
	}
	v, ok := parseNumber(s)
	if !ok {
		return false
	}
	switch c.Operator {
	case Greater, "":
		return compare(v, threshold) > 0
	case Less:
		return compare(v, threshold) < 0
	default:
		return true
	}
}

// compare orders two parsed values. Infinities are ordered as floats; finite
// values go through their shortest decimal form, which keeps float ordering.
func compare(a, b float64) int {
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	return decimal.NewFromFloat(a).Cmp(decimal.NewFromFloat(b))
}

// NumericValid reports whether raw is acceptable for a stored numeric column:
// blank, free text without a numeric prefix, or a finite number.
func NumericValid(raw string) bool {
	v, ok := parseNumber(raw)
	return !ok || !math.IsInf(v, 0)
}

// Criteria is a conjunction of optional constraints. Empty fields are wildcards.
type Criteria struct {
	Agriculteur     string
	NomSociete      string
	Referent        string
	TypeContrat     string
	TypeAgriculture string
	TypeProduction  string
	ProduitFini     string
	Surface         Comparator
	SAU             Comparator
	ActiveOnly      bool
}

// IsEmpty reports whether the criteria match every record.
func (c Criteria) IsEmpty() bool {
	for _, s := range c.texts() {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return strings.TrimSpace(c.TypeProduction) == "" &&
		strings.TrimSpace(c.ProduitFini) == "" &&
		!c.Surface.Active() && !c.SAU.Active() && !c.ActiveOnly
}

// Validate checks comparator operators.
func (c Criteria) Validate() error {
	if _, err := ParseOperator(string(c.Surface.Operator)); err != nil {
		return fmt.Errorf("surface_contractualisee: %w", err)
	}
	if _, err := ParseOperator(string(c.SAU.Operator)); err != nil {
		return fmt.Errorf("sau: %w", err)
	}
	return nil
}

func (c Criteria) texts() []string {
	return []string{c.Agriculteur, c.NomSociete, c.Referent, c.TypeContrat, c.TypeAgriculture}
}

// Evaluate reports whether d satisfies every constraint of c. today is used
// by the active-contract constraint and compared by calendar day.
func Evaluate(d marker.Data, c Criteria, today time.Time) bool {
	if !textMatches(c.Agriculteur, d.Agriculteur) ||
		!textMatches(c.NomSociete, d.NomSociete) ||
		!textMatches(c.Referent, d.Referent) ||
		!textMatches(c.TypeContrat, d.TypeContrat) ||
		!textMatches(c.TypeAgriculture, d.TypeAgriculture) {
		return false
	}

	if want := normalize(c.TypeProduction); want != "" && !containsProduction(d.TypeProductions, want) {
		return false
	}
	if want := normalize(c.ProduitFini); want != "" && !containsString(d.ProduitsFinis, want) {
		return false
	}

	if !c.Surface.accepts(d.SurfaceContractualisee.String(), false) {
		return false
	}
	if !c.SAU.accepts(d.SAU.String(), true) {
		return false
	}

	if c.ActiveOnly && !ActiveOn(d, today) {
		return false
	}
	return true
}

// ActiveOn reports whether date_prise_effet <= day <= date_fin. Both dates must parse.
func ActiveOn(d marker.Data, day time.Time) bool {
	start, ok := ParseDate(d.DatePriseEffet)
	if !ok {
		return false
	}
	end, ok := ParseDate(d.DateFin)
	if !ok {
		return false
	}
	today := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return !today.Before(start) && !today.After(end)
}

var dateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006", time.RFC3339}

// ParseDate parses contract dates (YYYY-MM-DD, DD-MM-YYYY, DD/MM/YYYY or RFC 3339)
// into a UTC calendar day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func textMatches(want, got string) bool {
	w := normalize(want)
	if w == "" {
		return true
	}
	return normalize(got) == w
}

func containsProduction(items []marker.Production, want string) bool {
	for _, p := range items {
		if normalize(p.Type) == want {
			return true
		}
	}
	return false
}

func containsString(items []string, want string) bool {
	for _, s := range items {
		if normalize(s) == want {
			return true
		}
	}
	return false
}

// normalize trims and case-folds s for comparison.
func normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Fold().String(s)
}

// Same prefix grammar as JavaScript parseFloat, minus Infinity.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseNumber reads the leading numeric prefix of s as a float64.
// Overflowing exponents give ±Inf, like parseFloat.
func parseNumber(s string) (float64, bool) {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}
