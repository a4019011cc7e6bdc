package sirenecache

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cen-na/agricarte/internal/db"
	"github.com/cen-na/agricarte/internal/domain/siret"
)

type mockProvider struct {
	mu      sync.Mutex
	company siret.Company
	err     error
	calls   int
	gate    chan struct{}
}

func (m *mockProvider) Lookup(ctx context.Context, _ siret.Number) (siret.Company, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.gate != nil {
		<-m.gate
	}
	if err := ctx.Err(); err != nil {
		return siret.Company{}, err
	}
	return m.company, m.err
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCache(t *testing.T, inner *mockProvider) (*CachedProvider, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, time.Hour, nil, zap.NewNop()), ms
}

var testCompany = siret.Company{
	Siren:                "123456789",
	Denomination:         "GAEC DURAND",
	ActivitePrincipale:   "01.45Z",
	CategorieJuridique:   "6533",
	TrancheEffectif:      "03",
	AdresseEtablissement: "12, RTE, DES VIGNES, 33000, BORDEAUX",
}
