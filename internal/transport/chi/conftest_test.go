package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cen-na/agricarte/internal/domain/contract"
	"github.com/cen-na/agricarte/internal/domain/marker"
	"github.com/cen-na/agricarte/internal/domain/person"
	"github.com/cen-na/agricarte/internal/domain/search/filter"
	"github.com/cen-na/agricarte/internal/domain/search/result"
	"github.com/cen-na/agricarte/internal/domain/siret"
	"github.com/cen-na/agricarte/internal/domain/usage"
	contractuc "github.com/cen-na/agricarte/internal/usecase/contract"
	healthuc "github.com/cen-na/agricarte/internal/usecase/health"
)

// --- Mocks ---

type mockPersons struct {
	searchFn func(ctx context.Context, kind person.Kind, term string) ([]result.Result, error)
}

func (m *mockPersons) Search(ctx context.Context, kind person.Kind, term string) ([]result.Result, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, kind, term)
	}
	return []result.Result{}, nil
}

type mockSirets struct {
	lookupFn func(ctx context.Context, raw string) (siret.Lookup, error)
	checkFn  func(ctx context.Context, raw string) (siret.ExistingContract, error)
}

func (m *mockSirets) Lookup(ctx context.Context, raw string) (siret.Lookup, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, raw)
	}
	return siret.Lookup{}, nil
}

func (m *mockSirets) CheckExisting(ctx context.Context, raw string) (siret.ExistingContract, error) {
	if m.checkFn != nil {
		return m.checkFn(ctx, raw)
	}
	return siret.ExistingContract{}, nil
}

type mockContracts struct {
	registerFn func(ctx context.Context, c contract.Contract) (contract.Contract, error)
	markersFn  func(ctx context.Context) ([]marker.Data, error)
	filterFn   func(ctx context.Context, c filter.Criteria) (contractuc.FilterResult, error)
	getFn      func(ctx context.Context, id string) (contract.Contract, error)
	updateFn   func(ctx context.Context, id string, c contract.Contract) (contract.Contract, error)
	deleteFn   func(ctx context.Context, id string) error
}

func (m *mockContracts) Get(ctx context.Context, id string) (contract.Contract, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return contract.Contract{ID: id}, nil
}

func (m *mockContracts) Update(ctx context.Context, id string, c contract.Contract) (contract.Contract, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, c)
	}
	c.ID = id
	return c, nil
}

func (m *mockContracts) Register(ctx context.Context, c contract.Contract) (contract.Contract, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, c)
	}
	c.ID = "new-id"
	return c, nil
}

func (m *mockContracts) Markers(ctx context.Context) ([]marker.Data, error) {
	if m.markersFn != nil {
		return m.markersFn(ctx)
	}
	return []marker.Data{}, nil
}

func (m *mockContracts) Filter(ctx context.Context, c filter.Criteria) (contractuc.FilterResult, error) {
	if m.filterFn != nil {
		return m.filterFn(ctx, c)
	}
	return contractuc.FilterResult{IDs: []string{}}, nil
}

func (m *mockContracts) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type mockUsage struct {
	report usage.Report
	period usage.Period
}

func (m *mockUsage) Report(_ context.Context, p usage.Period) usage.Report {
	m.period = p
	r := m.report
	r.Period = p
	return r
}

// --- Helpers ---

type testDeps struct {
	persons   *mockPersons
	sirets    *mockSirets
	contracts *mockContracts
	health    *mockHealth
	usage     *mockUsage
}

func newTestDeps() *testDeps {
	return &testDeps{
		persons:   &mockPersons{},
		sirets:    &mockSirets{},
		contracts: &mockContracts{},
		health:    &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}},
		usage:     &mockUsage{report: usage.Report{Remaining: -1}},
	}
}

func (d *testDeps) router() http.Handler {
	r := chi.NewRouter()
	NewServer(d.persons, d.sirets, d.contracts, d.health, d.usage, nil).Register(r)
	return r
}

func (d *testDeps) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	d.router().ServeHTTP(rr, req)
	return rr
}
