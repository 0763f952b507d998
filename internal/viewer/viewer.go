// Package viewer models the interactive painting viewer: which fact is
// hovered or selected, how that maps onto the ?fact= query parameter, and
// where each fact's region and zoom lens land on the rendered image.
package viewer

import (
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/ppiankov/artexplorer/internal/geometry"
	"github.com/ppiankov/artexplorer/internal/model"
	"github.com/ppiankov/artexplorer/internal/slug"
)

// QueryParam is the query string key carrying the selected fact's slug
const QueryParam = "fact"

// Viewer holds the interaction state for one painting render
type Viewer struct {
	mu    sync.Mutex
	facts []model.Fact
	index map[uuid.UUID]int
	slugs slug.Mapping
	state State
	size  geometry.Size
	query url.Values
	zoom  float64
}

// Option configures a Viewer
type Option func(*Viewer)

// WithZoom sets the lens magnification
func WithZoom(zoom float64) Option {
	return func(v *Viewer) {
		if zoom > 0 {
			v.zoom = zoom
		}
	}
}

// WithSize sets an already measured rendered size
func WithSize(size geometry.Size) Option {
	return func(v *Viewer) {
		v.size = size
	}
}

// New creates an idle viewer over facts. The fact list is not modified.
func New(facts []model.Fact, opts ...Option) *Viewer {
	v := &Viewer{
		facts: facts,
		index: make(map[uuid.UUID]int, len(facts)),
		slugs: slug.Assign(facts),
		state: Idle(),
		query: url.Values{},
		zoom:  geometry.DefaultZoom,
	}
	for i, f := range facts {
		v.index[f.ID] = i
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// State returns the current interaction state
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Facts returns the facts in display order
func (v *Viewer) Facts() []model.Fact {
	return v.facts
}

// Slugs returns the fact slug mapping
func (v *Viewer) Slugs() slug.Mapping {
	return v.slugs
}

// PointerEnter hovers the fact unless a selection is active
func (v *Viewer) PointerEnter(id uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, known := v.index[id]; !known {
		return
	}
	if v.state.Kind == KindSelected {
		return
	}
	v.state = Hovered(id)
}

// PointerLeave drops the hover; a selection is left untouched
func (v *Viewer) PointerLeave() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state.Kind == KindHovered {
		v.state = Idle()
	}
}

// Select selects the fact, clears any hover and writes its slug into the
// query. It returns false for unknown facts.
func (v *Viewer) Select(id uuid.UUID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, ok := v.slugs.SlugOf(id)
	if !ok {
		return false
	}
	v.state = Selected(id)
	v.query.Set(QueryParam, s)
	return true
}

// Clear returns to idle and removes the fact parameter from the query
func (v *Viewer) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.state = Idle()
	v.query.Del(QueryParam)
}

// Navigate adopts an externally supplied query (initial load, back/forward,
// direct link). A fact parameter naming a known slug selects that fact;
// anything else leaves the viewer idle. An unknown fact value stays in the
// query until the next Select or Clear replaces or removes it, so a
// select-then-clear round trip drops it.
func (v *Viewer) Navigate(query url.Values) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.query = cloneValues(query)
	v.state = Idle()

	if id, ok := v.slugs.IDOf(query.Get(QueryParam)); ok {
		v.state = Selected(id)
	}
}

// Query returns a copy of the current query
func (v *Viewer) Query() url.Values {
	v.mu.Lock()
	defer v.mu.Unlock()
	return cloneValues(v.query)
}

// SelectQuery returns the encoded query that would select the fact,
// without changing the viewer
func (v *Viewer) SelectQuery(id uuid.UUID) string {
	v.mu.Lock()
	defer v.mu.Unlock()

	q := cloneValues(v.query)
	if s, ok := v.slugs.SlugOf(id); ok {
		q.Set(QueryParam, s)
	}
	return q.Encode()
}

// ClearQuery returns the encoded query with the fact parameter removed,
// whether or not it named a known slug
func (v *Viewer) ClearQuery() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	q := cloneValues(v.query)
	q.Del(QueryParam)
	return q.Encode()
}

// Highlighted returns the fact drawn as active. Selection wins over hover.
func (v *Viewer) Highlighted() (uuid.UUID, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state.IsIdle() {
		return uuid.Nil, false
	}
	return v.state.FactID, true
}

// SelectedFact returns the selected fact, if any
func (v *Viewer) SelectedFact() (model.Fact, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id, ok := v.state.Selection()
	if !ok {
		return model.Fact{}, false
	}
	return v.facts[v.index[id]], true
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
