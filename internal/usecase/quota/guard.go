package quota

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cen-na/agricarte/internal/domain"
	"github.com/cen-na/agricarte/internal/domain/siret"
)

// Guard meters every lookup that reaches the registry, failed ones included.
type Guard struct {
	inner   Provider
	tracker *Tracker
	used    *prometheus.GaugeVec
}

// NewGuard wraps inner. used may be nil.
func NewGuard(inner Provider, tracker *Tracker, used *prometheus.GaugeVec) *Guard {
	return &Guard{inner: inner, tracker: tracker, used: used}
}

// Lookup checks the quota, then forwards to the registry.
func (g *Guard) Lookup(ctx context.Context, n siret.Number) (siret.Company, error) {
	if err := g.tracker.Check(ctx); err != nil {
		return siret.Company{}, fmt.Errorf("%w: %w", domain.ErrSireneUnavailable, err)
	}

	c, err := g.inner.Lookup(ctx, n)
	g.tracker.Record(1)
	if g.used != nil {
		g.used.WithLabelValues("daily").Set(float64(g.tracker.DailyUsed()))
		g.used.WithLabelValues("monthly").Set(float64(g.tracker.MonthlyUsed()))
	}
	return c, err
}
