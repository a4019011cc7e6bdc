// Package sirenecache caches SIRENE establishment lookups in the key-value store.
package sirenecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cen-na/agricarte/internal/db"
	"github.com/cen-na/agricarte/internal/domain"
	"github.com/cen-na/agricarte/internal/domain/siret"
)

var cacheKeyPrefix = domain.KeyPrefix + "sirene_cache:"

// DefaultTTL keeps registry answers for a day.
const DefaultTTL = 24 * time.Hour

// Provider fetches companies from the registry.
type Provider interface {
	Lookup(ctx context.Context, n siret.Number) (siret.Company, error)
}

// store is the consumer interface for the lookup cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedProvider caches successful lookups and collapses concurrent misses for the same SIRET.
type CachedProvider struct {
	inner      Provider
	store      store
	ttl        time.Duration
	group      singleflight.Group
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"shared"), passed explicitly.
func New(
	inner Provider,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedProvider{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Lookup returns a cached company or asks the inner provider once per SIRET in flight.
// Failures are never cached.
func (c *CachedProvider) Lookup(ctx context.Context, n siret.Number) (siret.Company, error) {
	key := cacheKey(n)

	if company, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return company, nil
	}

	// The flight is shared, so one caller's cancellation must not fail the others.
	flightCtx := context.WithoutCancel(ctx)
	leader := false
	v, err, _ := c.group.Do(key, func() (any, error) {
		leader = true
		company, err := c.inner.Lookup(flightCtx, n)
		if err != nil {
			return siret.Company{}, err
		}
		c.putToCache(flightCtx, key, company)
		return company, nil
	})
	if leader {
		c.incCache("miss")
	} else {
		c.incCache("shared")
	}
	if err != nil {
		return siret.Company{}, fmt.Errorf("lookup siret %s: %w", n, err)
	}
	return v.(siret.Company), nil
}

func (c *CachedProvider) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(n siret.Number) string {
	return cacheKeyPrefix + n.String()
}

// cachedCompany is the JSON form of a cached lookup.
type cachedCompany struct {
	Siren                string `json:"siren"`
	Denomination         string `json:"denomination"`
	ActivitePrincipale   string `json:"activite_principale"`
	CategorieJuridique   string `json:"categorie_juridique"`
	TrancheEffectif      string `json:"tranche_effectif"`
	AdresseEtablissement string `json:"adresse_etablissement"`
}

func (c *CachedProvider) getFromCache(ctx context.Context, key string) (siret.Company, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached company", zap.String("key", key), zap.Error(err))
		}
		return siret.Company{}, false
	}
	if len(data) == 0 {
		return siret.Company{}, false
	}

	var cc cachedCompany
	if err := json.Unmarshal(data, &cc); err != nil {
		c.logger.Warn("Failed to parse cached company", zap.String("key", key), zap.Error(err))
		return siret.Company{}, false
	}
	return siret.Company(cc), true
}

func (c *CachedProvider) putToCache(ctx context.Context, key string, company siret.Company) {
	data, err := json.Marshal(cachedCompany(company))
	if err != nil {
		c.logger.Warn("Failed to encode company", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache company", zap.String("key", key), zap.Error(err))
	}
}
