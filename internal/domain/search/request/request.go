package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cen-na/agricarte/internal/domain"
)

// Search term limits.
const (
	// MinTermLength is the shortest trimmed term that triggers a search.
	MinTermLength = 2
	// MaxTermLength is the longest accepted term.
	MaxTermLength = 256
	// DefaultLimit caps the number of suggestions returned.
	DefaultLimit = 10
)

// Query is a validated person search term.
type Query struct {
	term  string
	limit int
}

// New trims and validates a search term. limit <= 0 means DefaultLimit.
func New(term string, limit int) (Query, error) {
	term = strings.TrimSpace(term)
	n := utf8.RuneCountInString(term)
	if n < MinTermLength {
		return Query{}, fmt.Errorf("%w: %d chars (min %d)", domain.ErrTermTooShort, n, MinTermLength)
	}
	if n > MaxTermLength {
		return Query{}, fmt.Errorf("search term too long (max %d chars)", MaxTermLength)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Query{term: term, limit: limit}, nil
}

// Searchable reports whether a raw input is long enough to trigger a search.
func Searchable(raw string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(raw)) >= MinTermLength
}

// Term returns the trimmed term.
func (q Query) Term() string { return q.term }

// Limit returns the maximum number of results.
func (q Query) Limit() int { return q.limit }
