package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/cen-na/agricarte/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	q, err := New("  Paul Durand ", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Term() != "Paul Durand" {
		t.Errorf("term = %q", q.Term())
	}
	if q.Limit() != DefaultLimit {
		t.Errorf("limit = %d, want %d", q.Limit(), DefaultLimit)
	}
}

func TestNew_TooShort(t *testing.T) {
	for _, term := range []string{"", " ", "a", " é "} {
		_, err := New(term, 5)
		if !errors.Is(err, domain.ErrTermTooShort) {
			t.Errorf("New(%q) error = %v, want ErrTermTooShort", term, err)
		}
	}
}

func TestNew_TooLong(t *testing.T) {
	_, err := New(strings.Repeat("x", MaxTermLength+1), 0)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchable(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"d", false},
		{" d ", false},
		{"du", true},
		{"éé", true},
	}
	for _, tt := range tests {
		if got := Searchable(tt.in); got != tt.want {
			t.Errorf("Searchable(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
