package person

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/cen-na/agricarte/internal/db"
	"github.com/cen-na/agricarte/internal/domain"
	domper "github.com/cen-na/agricarte/internal/domain/person"
	"github.com/cen-na/agricarte/internal/domain/search/request"
)

// store is the consumer interface for persons (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	Del(ctx context.Context, key string) error
}

// Repo stores agriculteurs and referents as hashes, deduplicated by case-folded name.
type Repo struct {
	store store
	newID func() string
}

// New creates a person repository.
func New(s store) *Repo {
	return &Repo{store: s, newID: uuid.NewString}
}

// Ensure returns the stored person with the same kind and name as p, creating it when absent.
func (r *Repo) Ensure(ctx context.Context, p domper.Person) (domper.Person, error) {
	if p.ID == "" {
		p.ID = r.newID()
	}

	nameKey := nameIndexKey(p)
	created, err := r.store.SetNX(ctx, nameKey, []byte(p.ID))
	if err != nil {
		return domper.Person{}, fmt.Errorf("reserve %s: %w", p.Key(), err)
	}
	if !created {
		return r.resolve(ctx, p, nameKey)
	}

	if err := r.store.HSet(ctx, personKey(p.Kind, p.ID), personToHash(p)); err != nil {
		cleanupErr := r.store.Del(ctx, nameKey)
		return domper.Person{}, errors.Join(fmt.Errorf("hset person %s: %w", p.ID, err), cleanupErr)
	}
	return p, nil
}

// resolve loads the person the name index points to. A dangling index entry is
// repaired by storing p under the indexed ID.
func (r *Repo) resolve(ctx context.Context, p domper.Person, nameKey string) (domper.Person, error) {
	id, err := r.store.Get(ctx, nameKey)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domper.Person{}, fmt.Errorf("resolve %s: %w", p.Key(), domain.ErrNotFound)
		}
		return domper.Person{}, fmt.Errorf("resolve %s: %w", p.Key(), err)
	}

	existing, err := r.Get(ctx, p.Kind, string(id))
	if !errors.Is(err, domain.ErrNotFound) {
		return existing, err
	}

	p.ID = string(id)
	if err := r.store.HSet(ctx, personKey(p.Kind, p.ID), personToHash(p)); err != nil {
		return domper.Person{}, fmt.Errorf("repair person %s: %w", p.ID, err)
	}
	return p, nil
}

// Get retrieves a person by kind and ID.
func (r *Repo) Get(ctx context.Context, kind domper.Kind, id string) (domper.Person, error) {
	m, err := r.store.HGetAll(ctx, personKey(kind, id))
	if err != nil {
		return domper.Person{}, fmt.Errorf("hgetall person %s: %w", id, err)
	}
	if len(m) == 0 {
		return domper.Person{}, domain.ErrNotFound
	}
	return personFromHash(m)
}

// List returns every person of a kind sorted by nom then prenom.
func (r *Repo) List(ctx context.Context, kind domper.Kind) ([]domper.Person, error) {
	keys, err := r.store.Scan(ctx, personKey(kind, "*"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", kind, err)
	}
	if len(keys) == 0 {
		return []domper.Person{}, nil
	}

	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi %s: %w", kind, err)
	}

	out := make([]domper.Person, 0, len(rows))
	for i, m := range rows {
		if len(m) == 0 {
			continue
		}
		p, err := personFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse person %s: %w", keys[i], err)
		}
		out = append(out, p)
	}

	fold := cases.Fold()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := fold.String(out[i].Nom), fold.String(out[j].Nom)
		if a != b {
			return a < b
		}
		return fold.String(out[i].Prenom) < fold.String(out[j].Prenom)
	})
	return out, nil
}

// Search returns up to q.Limit() persons of a kind whose name contains the term.
func (r *Repo) Search(ctx context.Context, kind domper.Kind, q request.Query) ([]domper.Person, error) {
	all, err := r.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]domper.Person, 0, q.Limit())
	for _, p := range all {
		if !p.Matches(q.Term()) {
			continue
		}
		out = append(out, p)
		if len(out) == q.Limit() {
			break
		}
	}
	return out, nil
}

func personToHash(p domper.Person) map[string]string {
	return map[string]string{
		"id":     p.ID,
		"kind":   string(p.Kind),
		"nom":    p.Nom,
		"prenom": p.Prenom,
	}
}

func personFromHash(m map[string]string) (domper.Person, error) {
	kind, err := domper.ParseKind(m["kind"])
	if err != nil {
		return domper.Person{}, err
	}
	return domper.New(m["id"], kind, m["nom"], m["prenom"])
}

// Valkey key patterns: agricarte:person:{kind}:{id}, agricarte:person_name:{kind}:{nom}|{prenom}

func personKey(kind domper.Kind, id string) string {
	return fmt.Sprintf("%sperson:%s:%s", domain.KeyPrefix, kind, id)
}

func nameIndexKey(p domper.Person) string {
	return domain.KeyPrefix + "person_name:" + p.Key()
}
