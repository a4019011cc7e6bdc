package contract

import (
	"context"
	"testing"
	"time"

	"github.com/cen-na/agricarte/internal/db"
	domcon "github.com/cen-na/agricarte/internal/domain/contract"
	"github.com/cen-na/agricarte/internal/domain/geo"
	"github.com/cen-na/agricarte/internal/domain/person"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn      func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn      func(ctx context.Context, key string, paths ...string) ([]byte, error)
	jsonGetMultiFn func(ctx context.Context, keys []string) ([][]byte, error)
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hdelFn         func(ctx context.Context, key string, fields ...string) error
	delFn          func(ctx context.Context, key string) error
	existsFn       func(ctx context.Context, key string) (bool, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error) {
	if m.jsonGetMultiFn != nil {
		return m.jsonGetMultiFn(ctx, keys)
	}
	return make([][]byte, len(keys)), nil
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HDel(ctx context.Context, key string, fields ...string) error {
	if m.hdelFn != nil {
		return m.hdelFn(ctx, key, fields...)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	r := New(ms)
	r.now = func() time.Time { return testNow }
	r.newID = func() string { return "c1" }
	return r, ms
}

func testContract(t *testing.T) domcon.Contract {
	t.Helper()
	return domcon.Contract{
		Siret:           "12345678900012",
		NomSociete:      "GAEC Durand",
		Agriculteur:     person.Name{Nom: "Durand", Prenom: "Paul"},
		Referent:        person.Name{Nom: "Leroy", Prenom: "Marie"},
		TypeContrat:     "ORE",
		Surface:         "12.5",
		Position:        geo.LatLng{Lat: 45.1, Lng: -0.5},
		DatePriseEffet:  "2023-01-01",
		DateFin:         "2025-12-31",
		TypeProductions: []string{"Ovin"},
	}
}

func mustJSON(t *testing.T, c domcon.Contract) []byte {
	t.Helper()
	data, err := contractToJSON(c)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
