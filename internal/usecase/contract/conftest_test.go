package contract

import (
	"context"
	"time"

	"github.com/cen-na/agricarte/internal/domain"
	domcon "github.com/cen-na/agricarte/internal/domain/contract"
	"github.com/cen-na/agricarte/internal/domain/geo"
	"github.com/cen-na/agricarte/internal/domain/person"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// --- Mocks ---

type mockRepo struct {
	createFn func(ctx context.Context, c domcon.Contract) (domcon.Contract, error)
	getFn    func(ctx context.Context, id string) (domcon.Contract, error)
	updateFn func(ctx context.Context, c domcon.Contract) (domcon.Contract, error)
	listFn   func(ctx context.Context) ([]domcon.Contract, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockRepo) Get(ctx context.Context, id string) (domcon.Contract, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domcon.Contract{}, domain.ErrNotFound
}

func (m *mockRepo) Update(ctx context.Context, c domcon.Contract) (domcon.Contract, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, c)
	}
	return c, nil
}

func (m *mockRepo) Create(ctx context.Context, c domcon.Contract) (domcon.Contract, error) {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	c.ID = "new-id"
	return c, nil
}

func (m *mockRepo) List(ctx context.Context) ([]domcon.Contract, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockPersons struct {
	ensureFn func(ctx context.Context, kind person.Kind, name person.Name) (person.Person, error)
	calls    []person.Kind
}

func (m *mockPersons) Ensure(ctx context.Context, kind person.Kind, name person.Name) (person.Person, error) {
	m.calls = append(m.calls, kind)
	if m.ensureFn != nil {
		return m.ensureFn(ctx, kind, name)
	}
	return person.Person{ID: string(kind) + "-1", Kind: kind, Nom: name.Nom, Prenom: name.Prenom}, nil
}

func newTestService(repo Repository, persons PersonEnsurer) *Service {
	s := New(repo, persons, nil)
	s.now = func() time.Time { return testNow }
	return s
}

func validContract() domcon.Contract {
	return domcon.Contract{
		Siret:          "12345678900012",
		NomSociete:     "GAEC des Prés",
		Agriculteur:    person.Name{Nom: "Dupont", Prenom: "Paul"},
		Referent:       person.Name{Nom: "LEROY", Prenom: "marie"},
		TypeContrat:    "MAEC",
		Surface:        "12.5",
		SAU:            "80",
		Position:       geo.LatLng{Lat: 46.58, Lng: 0.34},
		DatePriseEffet: "2023-01-01",
		DateFin:        "2025-12-31",
	}
}

// snapshot is three contracts: one active MAEC, one expired MAEC, one ORE without dates.
func snapshot() []domcon.Contract {
	a := validContract()
	a.ID = "a"

	b := validContract()
	b.ID = "b"
	b.Agriculteur = person.Name{Nom: "Martin", Prenom: "Jeanne"}
	b.Surface = "3"
	b.DatePriseEffet, b.DateFin = "2020-01-01", "2022-12-31"

	c := validContract()
	c.ID = "c"
	c.TypeContrat = "ORE"
	c.Surface = ""
	c.SAU = ""
	c.DatePriseEffet, c.DateFin = "", ""

	return []domcon.Contract{a, b, c}
}
