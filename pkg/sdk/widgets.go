package agricarte

import (
	"context"
	"log/slog"
	"time"

	"github.com/cen-na/agricarte/internal/usecase/markers"
	"github.com/cen-na/agricarte/internal/usecase/search"
)

// Debounce delays of the two person widgets.
const (
	AgriculteurDebounce = 0
	ReferentDebounce    = 300 * time.Millisecond
)

// Remote person search.
type (
	// SearchWidget debounces keystrokes into backend searches.
	SearchWidget = search.Widget
	// Searcher queries persons matching a term.
	Searcher = search.Searcher
	// SearcherFunc adapts a function to Searcher.
	SearcherFunc = search.SearcherFunc
	// View is the suggestion panel of a widget.
	View = search.View
	// Fields are the nom/prenom inputs a selection fills and locks.
	Fields = search.Fields
	// Suggestion is one entry of the panel.
	Suggestion = search.Suggestion
)

// SearchConfig tunes a SearchWidget.
type SearchConfig struct {
	Entity   PersonKind
	Debounce time.Duration
	Split    SplitPolicy
	Logger   *slog.Logger
}

// Suggestion kinds.
const (
	KindExisting = search.KindExisting
	KindCreate   = search.KindCreate
)

// AgriculteurSearcher adapts c.SearchAgriculteur to Searcher.
func (c *Client) AgriculteurSearcher() Searcher {
	return SearcherFunc(func(ctx context.Context, term string) ([]Result, error) {
		return c.SearchAgriculteur(ctx, term)
	})
}

// ReferentSearcher adapts c.SearchReferent to Searcher.
func (c *Client) ReferentSearcher() Searcher {
	return SearcherFunc(func(ctx context.Context, term string) ([]Result, error) {
		return c.SearchReferent(ctx, term)
	})
}

// NewSearchWidget creates a widget with an explicit configuration.
func NewSearchWidget(s Searcher, view View, fields Fields, cfg SearchConfig) *SearchWidget {
	return search.New(s, view, fields, search.Config{
		Entity:   cfg.Entity,
		Debounce: cfg.Debounce,
		Split:    cfg.Split,
		Logger:   zapFromSlog(cfg.Logger),
	})
}

// NewAgriculteurSearch creates the agriculteur widget: no debounce, "Prenom Nom" split.
// It logs through the client's WithLogger logger.
func NewAgriculteurSearch(c *Client, view View, fields Fields) *SearchWidget {
	return NewSearchWidget(c.AgriculteurSearcher(), view, fields, SearchConfig{
		Entity:   AgriculteurKind,
		Debounce: AgriculteurDebounce,
		Split:    PrenomFirst,
		Logger:   c.obs.logger,
	})
}

// NewReferentSearch creates the referent widget: 300ms debounce, "Prenom Nom" split.
func NewReferentSearch(c *Client, view View, fields Fields) *SearchWidget {
	return NewSearchWidget(c.ReferentSearcher(), view, fields, SearchConfig{
		Entity:   ReferentKind,
		Debounce: ReferentDebounce,
		Split:    PrenomFirst,
		Logger:   c.obs.logger,
	})
}

// Marker filter engine.
type (
	// MarkerEngine filters map markers in place.
	MarkerEngine = markers.Engine
	// EngineOption configures a MarkerEngine.
	EngineOption = markers.Option
	// Outcome summarises a filter run.
	Outcome = markers.Outcome
	// Indicator is the loading indicator shown while filtering.
	Indicator = markers.Indicator
	// Notifier is told when a filter matched nothing.
	Notifier = markers.Notifier
	// Form is the filter form cleared on reset.
	Form = markers.Form
	// LocalSuggestion is an entry of the map's local autocomplete.
	LocalSuggestion = markers.Suggestion
)

// Engine options.
var (
	WithDelay     = markers.WithDelay
	WithClock     = markers.WithClock
	WithIndicator = markers.WithIndicator
	WithNotifier  = markers.WithNotifier
	WithForm      = markers.WithForm
)

// WithEngineLogger makes the engine log to l.
func WithEngineLogger(l *slog.Logger) EngineOption {
	return markers.WithLogger(zapFromSlog(l))
}

// NewMarkerEngine creates a filter engine over items.
func NewMarkerEngine(items []Marker, opts ...EngineOption) *MarkerEngine {
	return markers.New(items, opts...)
}

// Pins pairs each record with the pin returned by pinFor.
func Pins(data []MarkerData, pinFor func(MarkerData) Pin) []Marker {
	out := make([]Marker, len(data))
	for i, d := range data {
		out[i] = Marker{ID: d.ID, Pin: pinFor(d), Data: d}
	}
	return out
}
