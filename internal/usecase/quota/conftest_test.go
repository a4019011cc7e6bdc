package quota

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cen-na/agricarte/internal/domain/siret"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newTestTracker(daily, monthly int64, action Action) (*Tracker, *clock) {
	c := &clock{t: testNow}
	tr := NewTracker("sirene", daily, monthly, action, zap.NewNop())
	tr.now = c.now
	tr.lastDayReset = truncateToDay(testNow)
	tr.lastMonthReset = truncateToMonth(testNow)
	return tr, c
}

type mockStore struct {
	mu      sync.Mutex
	values  map[string]int64
	getErr  error
	incrErr error
}

func newMockStore() *mockStore { return &mockStore{values: map[string]int64{}} }

func (m *mockStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrErr != nil {
		return m.incrErr
	}
	m.values[key] += val
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.values[key], nil
}

type mockProvider struct {
	calls   int
	company siret.Company
	err     error
}

func (m *mockProvider) Lookup(context.Context, siret.Number) (siret.Company, error) {
	m.calls++
	return m.company, m.err
}
