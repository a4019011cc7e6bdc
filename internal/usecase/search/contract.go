package search

import (
	"context"

	"github.com/cen-na/agricarte/internal/domain/search/result"
)

// Searcher queries the backend for persons matching a term.
type Searcher interface {
	Search(ctx context.Context, term string) ([]result.Result, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, term string) ([]result.Result, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, term string) ([]result.Result, error) {
	return f(ctx, term)
}

// View is the suggestion panel attached to the search input.
type View interface {
	Show(suggestions []Suggestion)
	Hide()
	SetText(text string)
}

// Fields are the nom/prenom inputs filled by a selection.
type Fields interface {
	Set(nom, prenom string)
	Lock(locked bool)
}
