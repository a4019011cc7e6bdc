package markers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cen-na/agricarte/internal/domain"
	"github.com/cen-na/agricarte/internal/domain/geo"
	"github.com/cen-na/agricarte/internal/domain/marker"
	"github.com/cen-na/agricarte/internal/domain/search/filter"
)

// --- Fakes ---

type fakePin struct {
	mu      sync.Mutex
	opacity float64
	pos     geo.LatLng
	calls   int
}

func (p *fakePin) SetOpacity(o float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opacity = o
	p.calls++
}

func (p *fakePin) SetLatLng(pos geo.LatLng) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = pos
	p.calls++
}

type fakeIndicator struct{ shown, hidden int }

func (f *fakeIndicator) Show() { f.shown++ }
func (f *fakeIndicator) Hide() { f.hidden++ }

type fakeNotifier struct{ count int }

func (f *fakeNotifier) NoResults() { f.count++ }

type fakeForm struct{ cleared int }

func (f *fakeForm) Clear() { f.cleared++ }

var today = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func fixture() ([]marker.Marker, map[string]*fakePin) {
	data := []marker.Data{
		{
			ID: "1", Agriculteur: "Paul Durand", NomSociete: "GAEC Durand", Referent: "Marie Leroy",
			TypeContrat: "ORE", TypeAgriculture: "Bio",
			SurfaceContractualisee: "12.5", SAU: "80",
			Latitude: 45.1, Longitude: -0.5,
			DatePriseEffet: "2023-01-01", DateFin: "2025-12-31",
			TypeProductions: []marker.Production{{Type: "Ovin", Record: true}},
			ProduitsFinis:   []string{"Viande"},
		},
		{
			ID: "2", Agriculteur: "Jeanne Martin", NomSociete: "EARL Martin", Referent: "Marie Leroy",
			TypeContrat: "Prêt à usage", TypeAgriculture: "Conventionnelle",
			SurfaceContractualisee: "3", SAU: "",
			Latitude: 44.9, Longitude: -0.2,
			DatePriseEffet: "2020-01-01", DateFin: "2022-12-31",
			TypeProductions: []marker.Production{{Type: "Bovin"}},
			ProduitsFinis:   []string{"Lait"},
		},
		{
			ID: "3", Agriculteur: "Paul Durand", NomSociete: "SCEA Les Prés", Referent: "Luc Petit",
			TypeContrat: "ORE", TypeAgriculture: "bio",
			SurfaceContractualisee: "40ha", SAU: "120",
			Latitude: 45.3, Longitude: 0.1,
			DatePriseEffet: "2024-06-15", DateFin: "2030-01-01",
		},
	}

	pins := make(map[string]*fakePin, len(data))
	items := make([]marker.Marker, 0, len(data))
	for _, d := range data {
		p := &fakePin{opacity: marker.Visible, pos: d.Position()}
		pins[d.ID] = p
		items = append(items, marker.Marker{ID: d.ID, Pin: p, Data: d})
	}
	return items, pins
}

func assertVisible(t *testing.T, items []marker.Marker, pins map[string]*fakePin, want ...string) {
	t.Helper()
	visible := make(map[string]bool, len(want))
	for _, id := range want {
		visible[id] = true
	}
	for _, m := range items {
		p := pins[m.ID]
		if visible[m.ID] {
			if p.opacity != marker.Visible || p.pos != m.Position() {
				t.Errorf("marker %s: expected visible at %v, got opacity %v at %v", m.ID, m.Position(), p.opacity, p.pos)
			}
			continue
		}
		if p.opacity != marker.Hidden || p.pos != geo.Origin {
			t.Errorf("marker %s: expected hidden at origin, got opacity %v at %v", m.ID, p.opacity, p.pos)
		}
	}
}

// --- Filter ---

func TestFilter_TextCriteria(t *testing.T) {
	items, pins := fixture()
	e := New(items, WithClock(func() time.Time { return today }))

	out, err := e.Filter(context.Background(), filter.Criteria{Agriculteur: "  paul DURAND "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Matched != 2 || out.Total != 3 {
		t.Fatalf("expected 2/3, got %d/%d", out.Matched, out.Total)
	}
	if len(out.Visible) != 2 || out.Visible[0] != "1" || out.Visible[1] != "3" {
		t.Errorf("unexpected visible ids %v", out.Visible)
	}
	assertVisible(t, items, pins, "1", "3")
}

type pinState struct {
	opacity float64
	pos     geo.LatLng
}

func snapshot(pins map[string]*fakePin) map[string]pinState {
	out := make(map[string]pinState, len(pins))
	for id, p := range pins {
		p.mu.Lock()
		out[id] = pinState{opacity: p.opacity, pos: p.pos}
		p.mu.Unlock()
	}
	return out
}

func TestFilter_Idempotent(t *testing.T) {
	c := filter.Criteria{
		TypeContrat: "ore",
		Surface:     filter.Comparator{Operator: filter.Greater, Value: "10"},
	}
	other := filter.Criteria{Referent: "Marie Leroy", SAU: filter.Comparator{Operator: filter.Less, Value: "100"}}
	clock := WithClock(func() time.Time { return today })

	items, pins := fixture()
	e := New(items, clock)
	if _, err := e.Filter(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	first := snapshot(pins)
	if _, err := e.Filter(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	if second := snapshot(pins); !equalStates(first, second) {
		t.Errorf("second run changed state:\n%v\n%v", first, second)
	}

	items2, pins2 := fixture()
	e2 := New(items2, clock)
	if _, err := e2.Filter(context.Background(), other); err != nil {
		t.Fatal(err)
	}
	if _, err := e2.Filter(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	if after := snapshot(pins2); !equalStates(first, after) {
		t.Errorf("state depends on the previous filter:\n%v\n%v", first, after)
	}
	assertVisible(t, items2, pins2, "1", "3")
}

func equalStates(a, b map[string]pinState) bool {
	if len(a) != len(b) {
		return false
	}
	for id, s := range a {
		if b[id] != s {
			return false
		}
	}
	return true
}

func TestFilter_Conjunction(t *testing.T) {
	items, pins := fixture()
	e := New(items)

	surface, err := filter.NewComparator(">", "10")
	if err != nil {
		t.Fatal(err)
	}
	out, err := e.Filter(context.Background(), filter.Criteria{
		TypeAgriculture: "BIO",
		Surface:         surface,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Matched != 2 {
		t.Fatalf("expected 2 matches, got %d", out.Matched)
	}
	assertVisible(t, items, pins, "1", "3")
}

func TestFilter_SAUEmptyCountsAsZero(t *testing.T) {
	items, pins := fixture()
	e := New(items)

	sau, _ := filter.NewComparator("<", "50")
	out, err := e.Filter(context.Background(), filter.Criteria{SAU: sau})
	if err != nil {
		t.Fatal(err)
	}
	if out.Matched != 1 {
		t.Fatalf("expected 1 match, got %d", out.Matched)
	}
	assertVisible(t, items, pins, "2")
}

func TestFilter_ActiveOnly(t *testing.T) {
	items, pins := fixture()
	e := New(items, WithClock(func() time.Time { return today }))

	out, err := e.Filter(context.Background(), filter.Criteria{ActiveOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if out.Matched != 2 {
		t.Fatalf("expected 2 active contracts, got %d", out.Matched)
	}
	assertVisible(t, items, pins, "1", "3")
}

func TestFilter_EmptyCriteriaShowsAll(t *testing.T) {
	items, pins := fixture()
	e := New(items)

	if _, err := e.Filter(context.Background(), filter.Criteria{Agriculteur: "nobody"}); err != nil {
		t.Fatal(err)
	}
	out, err := e.Filter(context.Background(), filter.Criteria{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Matched != 3 {
		t.Fatalf("expected all markers, got %d", out.Matched)
	}
	assertVisible(t, items, pins, "1", "2", "3")
}

func TestFilter_NoResultsNotifies(t *testing.T) {
	items, pins := fixture()
	ind := &fakeIndicator{}
	n := &fakeNotifier{}
	e := New(items, WithIndicator(ind), WithNotifier(n))

	out, err := e.Filter(context.Background(), filter.Criteria{NomSociete: "inconnue"})
	if err != nil {
		t.Fatal(err)
	}
	if out.HasResults() {
		t.Fatal("expected no results")
	}
	if n.count != 1 {
		t.Errorf("expected one notification, got %d", n.count)
	}
	if ind.shown != 1 || ind.hidden != 1 {
		t.Errorf("expected indicator shown and hidden once, got %d/%d", ind.shown, ind.hidden)
	}
	assertVisible(t, items, pins)
}

func TestFilter_InvalidOperator(t *testing.T) {
	items, pins := fixture()
	ind := &fakeIndicator{}
	e := New(items, WithIndicator(ind))

	_, err := e.Filter(context.Background(), filter.Criteria{
		Surface: filter.Comparator{Operator: "=", Value: "3"},
	})
	if !errors.Is(err, domain.ErrInvalidCriteria) {
		t.Fatalf("expected ErrInvalidCriteria, got %v", err)
	}
	if ind.shown != 0 {
		t.Error("indicator should not be shown for invalid criteria")
	}
	for id, p := range pins {
		if p.calls != 0 {
			t.Errorf("pin %s should be untouched", id)
		}
	}
}

func TestFilter_DelayCancelled(t *testing.T) {
	items, pins := fixture()
	ind := &fakeIndicator{}
	e := New(items, WithDelay(time.Hour), WithIndicator(ind))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Filter(ctx, filter.Criteria{Agriculteur: "Paul Durand"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ind.shown != 1 || ind.hidden != 1 {
		t.Errorf("expected indicator shown and hidden once, got %d/%d", ind.shown, ind.hidden)
	}
	for id, p := range pins {
		if p.calls != 0 {
			t.Errorf("pin %s should be untouched", id)
		}
	}
}

func TestFilter_DelayElapses(t *testing.T) {
	items, _ := fixture()
	e := New(items, WithDelay(10*time.Millisecond))

	start := time.Now()
	out, err := e.Filter(context.Background(), filter.Criteria{Referent: "marie leroy"})
	if err != nil {
		t.Fatal(err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Error("filter returned before the delay")
	}
	if out.Matched != 2 {
		t.Errorf("expected 2 matches, got %d", out.Matched)
	}
}

func TestFilter_MissingPinSkipped(t *testing.T) {
	items, pins := fixture()
	items[1].Pin = nil
	e := New(items)

	out, err := e.Filter(context.Background(), filter.Criteria{TypeContrat: "ore"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Matched != 2 {
		t.Errorf("expected 2 matches, got %d", out.Matched)
	}
	if pins["2"].calls != 0 {
		t.Error("detached pin should not be touched")
	}
}

// --- Reset ---

func TestReset(t *testing.T) {
	items, pins := fixture()
	form := &fakeForm{}
	e := New(items, WithForm(form))

	if _, err := e.Filter(context.Background(), filter.Criteria{Agriculteur: "nobody"}); err != nil {
		t.Fatal(err)
	}
	e.Reset()

	assertVisible(t, items, pins, "1", "2", "3")
	if form.cleared != 1 {
		t.Errorf("expected form cleared once, got %d", form.cleared)
	}
	if !e.Criteria().IsEmpty() {
		t.Error("criteria should be cleared")
	}
}

func TestNew_CopiesSnapshot(t *testing.T) {
	items, _ := fixture()
	e := New(items)
	items[0].Data.Agriculteur = "changed"

	if e.Len() != 3 {
		t.Fatalf("expected 3 markers, got %d", e.Len())
	}
	if got := e.Values(marker.FieldAgriculteur); got[0] != "Paul Durand" {
		t.Errorf("engine snapshot mutated: %v", got)
	}
}

// --- Autocomplete ---

func TestValues_UniqueInOrder(t *testing.T) {
	items, _ := fixture()
	e := New(items)

	got := e.Values(marker.FieldReferent)
	if len(got) != 2 || got[0] != "Marie Leroy" || got[1] != "Luc Petit" {
		t.Errorf("unexpected values %v", got)
	}
}

func TestSuggest_Substring(t *testing.T) {
	items, _ := fixture()
	e := New(items)

	got := e.Suggest(marker.FieldNomSociete, "mar")
	if len(got) != 1 || got[0].Value != "EARL Martin" || got[0].Create {
		t.Errorf("unexpected suggestions %+v", got)
	}
}

func TestSuggest_Limit(t *testing.T) {
	var items []marker.Marker
	for i := 0; i < 15; i++ {
		d := marker.Data{ID: string(rune('a' + i)), NomSociete: "Ferme " + string(rune('A'+i))}
		items = append(items, marker.Marker{ID: d.ID, Data: d})
	}
	e := New(items)

	if got := e.Suggest(marker.FieldNomSociete, "ferme"); len(got) != MaxSuggestions {
		t.Errorf("expected %d suggestions, got %d", MaxSuggestions, len(got))
	}
}

func TestSuggest_CreateAgriculteur(t *testing.T) {
	items, _ := fixture()
	e := New(items)

	got := e.Suggest(marker.FieldAgriculteur, "dUPONT jean")
	if len(got) != 1 || !got[0].Create {
		t.Fatalf("expected a single create entry, got %+v", got)
	}
	if got[0].Name.Nom != "Dupont" || got[0].Name.Prenom != "Jean" {
		t.Errorf("unexpected name %+v", got[0].Name)
	}
}

func TestSuggest_NoCreateForOtherFields(t *testing.T) {
	items, _ := fixture()
	e := New(items)

	if got := e.Suggest(marker.FieldReferent, "zzz"); len(got) != 0 {
		t.Errorf("expected no suggestions, got %+v", got)
	}
	if got := e.Suggest(marker.FieldAgriculteur, "   "); got != nil {
		t.Errorf("expected nil for blank term, got %+v", got)
	}
}
