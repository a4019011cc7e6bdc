// Package markers applies search criteria to the markers of the contract map.
package markers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/cen-na/agricarte/internal/domain"
	"github.com/cen-na/agricarte/internal/domain/geo"
	"github.com/cen-na/agricarte/internal/domain/marker"
	"github.com/cen-na/agricarte/internal/domain/person"
	"github.com/cen-na/agricarte/internal/domain/search/filter"
)

// MaxSuggestions caps local autocomplete lists.
const MaxSuggestions = 10

// Outcome summarises one filter run.
type Outcome struct {
	Matched int
	Total   int
	Visible []string // IDs of matching markers, in marker order
}

// HasResults reports whether at least one marker matched.
func (o Outcome) HasResults() bool { return o.Matched > 0 }

// Engine owns the marker snapshot of a map and toggles pins according to criteria.
// The snapshot is never reordered, grown or shrunk.
type Engine struct {
	mu       sync.Mutex
	items    []marker.Marker
	criteria filter.Criteria

	delay     time.Duration
	now       func() time.Time
	indicator Indicator
	notifier  Notifier
	form      Form
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithDelay waits d before applying a filter, leaving the indicator visible.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) { e.delay = d }
}

// WithClock overrides the clock used by the active-contract constraint.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIndicator sets the loading indicator.
func WithIndicator(i Indicator) Option {
	return func(e *Engine) { e.indicator = i }
}

// WithNotifier sets the "no results" notifier.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithForm sets the criteria form cleared by Reset.
func WithForm(f Form) Option {
	return func(e *Engine) { e.form = f }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine over a copy of items.
func New(items []marker.Marker, opts ...Option) *Engine {
	e := &Engine{
		items:  append([]marker.Marker(nil), items...),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Len returns the number of markers.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items)
}

// Criteria returns the last applied criteria.
func (e *Engine) Criteria() filter.Criteria {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.criteria
}

// Filter shows matching markers at their true position and parks the others
// at (0,0) with opacity 0. When ctx ends during the delay, no pin is touched.
func (e *Engine) Filter(ctx context.Context, c filter.Criteria) (Outcome, error) {
	if err := c.Validate(); err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", domain.ErrInvalidCriteria, err)
	}

	if e.indicator != nil {
		e.indicator.Show()
		defer e.indicator.Hide()
	}

	if e.delay > 0 {
		timer := time.NewTimer(e.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Outcome{}, fmt.Errorf("filter markers: %w", ctx.Err())
		case <-timer.C:
		}
	}

	e.mu.Lock()
	out := e.apply(c, e.now())
	e.criteria = c
	e.mu.Unlock()

	e.logger.Debug("Markers filtered",
		zap.Int("matched", out.Matched),
		zap.Int("total", out.Total),
	)

	if !out.HasResults() && e.notifier != nil {
		e.notifier.NoResults()
	}
	return out, nil
}

func (e *Engine) apply(c filter.Criteria, today time.Time) Outcome {
	out := Outcome{Total: len(e.items)}
	for _, m := range e.items {
		if filter.Evaluate(m.Data, c, today) {
			e.show(m)
			out.Matched++
			out.Visible = append(out.Visible, m.ID)
			continue
		}
		e.hide(m)
	}
	return out
}

// Reset shows every marker at its true position and clears the criteria form.
func (e *Engine) Reset() {
	e.mu.Lock()
	for _, m := range e.items {
		e.show(m)
	}
	e.criteria = filter.Criteria{}
	e.mu.Unlock()

	if e.form != nil {
		e.form.Clear()
	}
}

func (e *Engine) show(m marker.Marker) {
	if m.Pin == nil {
		e.logger.Warn("Marker has no pin", zap.String("marker_id", m.ID))
		return
	}
	m.Pin.SetOpacity(marker.Visible)
	m.Pin.SetLatLng(m.Position())
}

func (e *Engine) hide(m marker.Marker) {
	if m.Pin == nil {
		e.logger.Warn("Marker has no pin", zap.String("marker_id", m.ID))
		return
	}
	m.Pin.SetOpacity(marker.Hidden)
	m.Pin.SetLatLng(geo.Origin)
}

// Values returns the distinct trimmed non-empty values of a field, in first-seen order.
func (e *Engine) Values(f marker.Field) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[string]struct{}, len(e.items))
	var out []string
	for _, m := range e.items {
		v := strings.TrimSpace(m.Data.Text(f))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Suggestion is a local autocomplete entry.
type Suggestion struct {
	Value  string
	Create bool
	Name   person.Name // set when Create is true
}

// Suggest returns up to MaxSuggestions values of f containing term, ignoring case.
// For the agriculteur field, an empty match list yields a single Create entry
// whose name is read nom-first from term.
func (e *Engine) Suggest(f marker.Field, term string) []Suggestion {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(term))
	if want == "" {
		return nil
	}

	var out []Suggestion
	for _, v := range e.Values(f) {
		if strings.Contains(fold.String(v), want) {
			out = append(out, Suggestion{Value: v})
			if len(out) == MaxSuggestions {
				break
			}
		}
	}

	if len(out) == 0 && f == marker.FieldAgriculteur {
		out = append(out, Suggestion{
			Create: true,
			Name:   person.Split(term, person.NomFirst).Capitalized(),
		})
	}
	return out
}
