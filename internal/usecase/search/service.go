// Package search implements the debounced person search widget used by the
// agriculteur and referent inputs.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cen-na/agricarte/internal/domain/person"
	"github.com/cen-na/agricarte/internal/domain/search/request"
	"github.com/cen-na/agricarte/internal/domain/search/result"
)

// Kind tells existing persons apart from the "create" entry.
type Kind int

const (
	// KindExisting is a person returned by the backend.
	KindExisting Kind = iota
	// KindCreate proposes a new person built from the typed term.
	KindCreate
)

// Suggestion is one entry of the panel.
type Suggestion struct {
	Kind  Kind
	Label string
	Name  person.Name
	Text  string // input text after selection
}

// Config tunes a widget.
type Config struct {
	Entity   person.Kind
	Debounce time.Duration
	Split    person.SplitPolicy
	Logger   *zap.Logger
}

// Widget debounces keystrokes into backend searches and renders their results.
// Only the response of the latest dispatch is rendered.
type Widget struct {
	searcher Searcher
	view     View
	fields   Fields
	cfg      Config
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	timer    *time.Timer
	inflight context.CancelFunc
	gen      uint64
	closed   bool
	locked   bool
}

// New creates a widget. A nil logger means no logging.
func New(searcher Searcher, view View, fields Fields, cfg Config) *Widget {
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Widget{
		searcher: searcher,
		view:     view,
		fields:   fields,
		cfg:      cfg,
		logger:   l.With(zap.String("entity", string(cfg.Entity))),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Input handles a change of the search input.
func (w *Widget) Input(text string) {
	term := strings.TrimSpace(text)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.gen++
	gen := w.gen
	w.stopLocked()

	if !request.Searchable(term) {
		w.mu.Unlock()
		w.hide()
		return
	}

	if w.cfg.Debounce <= 0 {
		w.mu.Unlock()
		go w.dispatch(gen, term)
		return
	}
	w.timer = time.AfterFunc(w.cfg.Debounce, func() { w.dispatch(gen, term) })
	w.mu.Unlock()
}

func (w *Widget) stopLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if w.inflight != nil {
		w.inflight()
		w.inflight = nil
	}
}

func (w *Widget) dispatch(gen uint64, term string) {
	w.mu.Lock()
	if w.closed || gen != w.gen {
		w.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(w.ctx)
	w.inflight = cancel
	w.mu.Unlock()
	defer cancel()

	if w.searcher == nil {
		w.logger.Warn("Search skipped: no searcher configured")
		return
	}

	results, err := w.searcher.Search(ctx, term)

	if !w.current(gen) {
		w.logger.Debug("Stale search response dropped", zap.String("term", term))
		return
	}
	if err != nil {
		w.logger.Warn("Search failed", zap.String("term", term), zap.Error(err))
		w.hide()
		return
	}
	w.render(term, results)
}

func (w *Widget) current(gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.closed && gen == w.gen
}

func (w *Widget) render(term string, results []result.Result) {
	if w.view == nil {
		w.logger.Warn("Suggestions dropped: no view attached")
		return
	}
	if len(results) == 0 {
		w.view.Show([]Suggestion{w.createSuggestion(term)})
		return
	}

	out := make([]Suggestion, 0, len(results))
	for _, r := range results {
		label := r.Display
		if w.cfg.Entity == person.Referent {
			label = r.FullName()
		}
		out = append(out, Suggestion{
			Kind:  KindExisting,
			Label: label,
			Name:  person.Name{Nom: r.Nom, Prenom: r.Prenom},
			Text:  label,
		})
	}
	w.view.Show(out)
}

func (w *Widget) createSuggestion(term string) Suggestion {
	prefix := "Ajouter un nouvel agriculteur : "
	if w.cfg.Entity == person.Referent {
		prefix = "Ajouter un(e) nouvel(le) référent(e) : "
	}
	return Suggestion{
		Kind:  KindCreate,
		Label: prefix + term,
		Name:  person.Split(term, w.cfg.Split).Capitalized(),
	}
}

// Select fills and locks the target fields with s, then closes the panel.
// Pending and in-flight searches are dropped so they cannot reopen it.
func (w *Widget) Select(s Suggestion) {
	w.mu.Lock()
	w.gen++
	w.stopLocked()
	w.mu.Unlock()

	if w.fields == nil {
		w.logger.Warn("Selection ignored: no target fields")
	} else {
		w.fields.Set(s.Name.Nom, s.Name.Prenom)
		w.fields.Lock(true)
		w.mu.Lock()
		w.locked = true
		w.mu.Unlock()
	}

	if w.view != nil {
		w.view.SetText(s.Text)
	}
	w.hide()
}

// Dismiss closes the panel without touching the fields.
func (w *Widget) Dismiss() { w.hide() }

// Unlock makes the target fields editable again.
func (w *Widget) Unlock() {
	w.mu.Lock()
	w.locked = false
	w.mu.Unlock()
	if w.fields != nil {
		w.fields.Lock(false)
	}
}

// Locked reports whether a selection currently locks the fields.
func (w *Widget) Locked() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.locked
}

// Close cancels the pending search and drops in-flight responses.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.stopLocked()
	w.cancel()
}

func (w *Widget) hide() {
	if w.view == nil {
		w.logger.Warn("Hide ignored: no view attached")
		return
	}
	w.view.Hide()
}
