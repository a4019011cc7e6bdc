package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cen-na/agricarte/internal/db"
)

type expireCall struct {
	key string
	ttl time.Duration
	nx  bool
}

type fakeStore struct {
	values    map[string][]byte
	incrs     map[string]int64
	expires   []expireCall
	getErr    error
	incrErr   error
	expireErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string][]byte{}, incrs: map[string]int64{}}
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeStore) IncrBy(_ context.Context, key string, val int64) error {
	if f.incrErr != nil {
		return f.incrErr
	}
	f.incrs[key] += val
	return nil
}

func (f *fakeStore) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	f.expires = append(f.expires, expireCall{key, ttl, nx})
	return f.expireErr
}

func TestIncrBy_SetsTTLByPeriod(t *testing.T) {
	fs := newFakeStore()
	s := New(fs, 48*time.Hour, 62*24*time.Hour)

	daily := "agricarte:budget:sirene:daily:2024-03-01"
	monthly := "agricarte:budget:sirene:monthly:2024-03"
	for _, k := range []string{daily, monthly} {
		if err := s.IncrBy(context.Background(), k, 1); err != nil {
			t.Fatalf("incr %s: %v", k, err)
		}
	}

	if fs.incrs[daily] != 1 || fs.incrs[monthly] != 1 {
		t.Errorf("unexpected counters %v", fs.incrs)
	}
	want := []expireCall{{daily, 48 * time.Hour, true}, {monthly, 62 * 24 * time.Hour, true}}
	for i, w := range want {
		if fs.expires[i] != w {
			t.Errorf("expire %d = %+v, want %+v", i, fs.expires[i], w)
		}
	}
}

func TestIncrBy_Errors(t *testing.T) {
	fs := newFakeStore()
	fs.incrErr = errors.New("down")
	s := New(fs, time.Hour, time.Hour)
	if err := s.IncrBy(context.Background(), "k", 1); err == nil {
		t.Fatal("expected incr error")
	}
	if len(fs.expires) != 0 {
		t.Error("expire must not run after a failed incr")
	}

	fs = newFakeStore()
	fs.expireErr = errors.New("down")
	s = New(fs, time.Hour, time.Hour)
	if err := s.IncrBy(context.Background(), "k", 1); err == nil {
		t.Fatal("expected expire error")
	}
}

func TestGet(t *testing.T) {
	fs := newFakeStore()
	fs.values["present"] = []byte("42")
	fs.values["garbage"] = []byte("x")
	s := New(fs, time.Hour, time.Hour)

	tests := []struct {
		key     string
		want    int64
		wantErr bool
	}{
		{"present", 42, false},
		{"missing", 0, false},
		{"garbage", 0, true},
	}
	for _, tt := range tests {
		got, err := s.Get(context.Background(), tt.key)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("%s: got %d, %v", tt.key, got, err)
		}
	}

	fs.getErr = errors.New("down")
	if _, err := s.Get(context.Background(), "present"); err == nil {
		t.Error("expected store error")
	}
}
