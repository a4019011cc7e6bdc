package contract

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cen-na/agricarte/internal/db"
	"github.com/cen-na/agricarte/internal/domain"
	domcon "github.com/cen-na/agricarte/internal/domain/contract"
	"github.com/cen-na/agricarte/internal/domain/siret"
)

// store is the consumer interface for contracts (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores contracts as JSON documents with a per-SIRET index hash.
type Repo struct {
	store store
	now   func() time.Time
	newID func() string
}

// New creates a contract repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now, newID: uuid.NewString}
}

// Create stores c, assigning an ID and a creation time when missing.
// When indexing the SIRET fails, the document is removed again.
func (r *Repo) Create(ctx context.Context, c domcon.Contract) (domcon.Contract, error) {
	if c.ID == "" {
		c.ID = r.newID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.now().UTC()
	}

	key := contractKey(c.ID)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return domcon.Contract{}, fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domcon.Contract{}, domain.ErrAlreadyExists
	}

	data, err := contractToJSON(c)
	if err != nil {
		return domcon.Contract{}, err
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return domcon.Contract{}, fmt.Errorf("json.set contract %s: %w", c.ID, err)
	}

	if c.Siret != "" {
		idx := map[string]string{c.ID: strconv.FormatInt(c.CreatedAt.UnixMilli(), 10)}
		if err := r.store.HSet(ctx, siretKey(c.Siret), idx); err != nil {
			cleanupErr := r.store.Del(ctx, key)
			return domcon.Contract{}, errors.Join(fmt.Errorf("index siret %s: %w", c.Siret, err), cleanupErr)
		}
	}
	return c, nil
}

// Update replaces a stored contract. ID and creation time are kept; the SIRET
// index entry moves when the SIRET changes.
func (r *Repo) Update(ctx context.Context, c domcon.Contract) (domcon.Contract, error) {
	old, err := r.Get(ctx, c.ID)
	if err != nil {
		return domcon.Contract{}, err
	}
	c.CreatedAt = old.CreatedAt

	data, err := contractToJSON(c)
	if err != nil {
		return domcon.Contract{}, err
	}
	if err := r.store.JSONSet(ctx, contractKey(c.ID), "$", data); err != nil {
		return domcon.Contract{}, fmt.Errorf("json.set contract %s: %w", c.ID, err)
	}

	if old.Siret == c.Siret {
		return c, nil
	}
	if old.Siret != "" {
		if err := r.store.HDel(ctx, siretKey(old.Siret), c.ID); err != nil {
			return domcon.Contract{}, fmt.Errorf("unindex siret %s: %w", old.Siret, err)
		}
	}
	if c.Siret != "" {
		idx := map[string]string{c.ID: strconv.FormatInt(c.CreatedAt.UnixMilli(), 10)}
		if err := r.store.HSet(ctx, siretKey(c.Siret), idx); err != nil {
			return domcon.Contract{}, fmt.Errorf("index siret %s: %w", c.Siret, err)
		}
	}
	return c, nil
}

// Get retrieves a contract by ID.
func (r *Repo) Get(ctx context.Context, id string) (domcon.Contract, error) {
	data, err := r.store.JSONGet(ctx, contractKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domcon.Contract{}, domain.ErrNotFound
		}
		return domcon.Contract{}, fmt.Errorf("json.get contract %s: %w", id, err)
	}
	return contractFromJSON(data)
}

// List returns every contract sorted by creation time.
func (r *Repo) List(ctx context.Context) ([]domcon.Contract, error) {
	keys, err := r.store.Scan(ctx, contractKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan contracts: %w", err)
	}
	return r.load(ctx, keys)
}

// BySiret returns the contracts registered for a SIRET, oldest first.
func (r *Repo) BySiret(ctx context.Context, n siret.Number) ([]domcon.Contract, error) {
	idx, err := r.store.HGetAll(ctx, siretKey(n))
	if err != nil {
		return nil, fmt.Errorf("hgetall siret %s: %w", n, err)
	}
	keys := make([]string, 0, len(idx))
	for id := range idx {
		keys = append(keys, contractKey(id))
	}
	return r.load(ctx, keys)
}

// Delete removes a contract and its SIRET index entry.
func (r *Repo) Delete(ctx context.Context, id string) error {
	c, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := r.store.Del(ctx, contractKey(id)); err != nil {
		return fmt.Errorf("del contract %s: %w", id, err)
	}
	if c.Siret != "" {
		if err := r.store.HDel(ctx, siretKey(c.Siret), id); err != nil {
			return fmt.Errorf("unindex siret %s: %w", c.Siret, err)
		}
	}
	return nil
}

func (r *Repo) load(ctx context.Context, keys []string) ([]domcon.Contract, error) {
	if len(keys) == 0 {
		return []domcon.Contract{}, nil
	}

	docs, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("json.get multi contracts: %w", err)
	}

	out := make([]domcon.Contract, 0, len(docs))
	for i, data := range docs {
		if data == nil {
			continue
		}
		c, err := contractFromJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parse contract %s: %w", keys[i], err)
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Valkey key patterns: agricarte:contract:{id}, agricarte:siret:{siret}

func contractKey(id string) string {
	return fmt.Sprintf("%scontract:%s", domain.KeyPrefix, id)
}

func siretKey(n siret.Number) string {
	return fmt.Sprintf("%ssiret:%s", domain.KeyPrefix, n)
}
