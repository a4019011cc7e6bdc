package person

import (
	"context"
	"strings"
	"testing"

	"github.com/cen-na/agricarte/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	getFn          func(ctx context.Context, key string) ([]byte, error)
	setNXFn        func(ctx context.Context, key string, value []byte) (bool, error)
	delFn          func(ctx context.Context, key string) error
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

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return nil, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	if m.setNXFn != nil {
		return m.setNXFn(ctx, key, value)
	}
	return true, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

// memStore wires a mockStore to in-memory maps.
func memStore() *mockStore {
	kv := map[string][]byte{}
	hashes := map[string]map[string]string{}

	return &mockStore{
		hsetFn: func(_ context.Context, key string, fields map[string]string) error {
			h := hashes[key]
			if h == nil {
				h = map[string]string{}
				hashes[key] = h
			}
			for k, v := range fields {
				h[k] = v
			}
			return nil
		},
		hgetAllFn: func(_ context.Context, key string) (map[string]string, error) {
			return hashes[key], nil
		},
		hgetAllMultiFn: func(_ context.Context, keys []string) ([]map[string]string, error) {
			out := make([]map[string]string, len(keys))
			for i, k := range keys {
				out[i] = hashes[k]
			}
			return out, nil
		},
		scanFn: func(_ context.Context, pattern string) ([]string, error) {
			prefix := strings.TrimSuffix(pattern, "*")
			var keys []string
			for k := range hashes {
				if strings.HasPrefix(k, prefix) {
					keys = append(keys, k)
				}
			}
			return keys, nil
		},
		getFn: func(_ context.Context, key string) ([]byte, error) {
			v, ok := kv[key]
			if !ok {
				return nil, db.ErrKeyNotFound
			}
			return v, nil
		},
		setNXFn: func(_ context.Context, key string, value []byte) (bool, error) {
			if _, ok := kv[key]; ok {
				return false, nil
			}
			kv[key] = value
			return true, nil
		},
		delFn: func(_ context.Context, key string) error {
			delete(kv, key)
			delete(hashes, key)
			return nil
		},
	}
}

func newTestRepo(t *testing.T, ms *mockStore) *Repo {
	t.Helper()
	n := 0
	r := New(ms)
	r.newID = func() string {
		n++
		return "p" + string(rune('0'+n))
	}
	return r
}
