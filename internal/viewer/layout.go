package viewer

import (
	"github.com/google/uuid"

	"github.com/ppiankov/artexplorer/internal/geometry"
	"github.com/ppiankov/artexplorer/internal/model"
)

// Region is a fact's overlay rectangle at the current rendered size. The
// highlighted fact is reported by Highlighted, not per region.
type Region struct {
	Fact model.Fact
	Slug string
	Rect geometry.Rect
}

// Size returns the current rendered image size
func (v *Viewer) Size() geometry.Size {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.size
}

// Resize records a new rendered size. Repeated sizes are ignored, so it is
// safe to call on every resize notification. It reports whether the size
// changed.
func (v *Viewer) Resize(size geometry.Size) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if size == v.size {
		return false
	}
	v.size = size
	return true
}

// Observe subscribes the viewer to size changes from src. The returned
// function must be called when the viewer is torn down.
func (v *Viewer) Observe(src SizeSource) (unsubscribe func()) {
	return src.Subscribe(func(size geometry.Size) {
		v.Resize(size)
	})
}

// Regions maps every rectangular fact onto the given size, in display
// order. Later regions draw on top of earlier ones.
func (v *Viewer) Regions(size geometry.Size) []Region {
	regions := make([]Region, 0, len(v.facts))
	for _, f := range v.facts {
		if !f.IsRect() {
			continue
		}
		s, _ := v.slugs.SlugOf(f.ID)
		regions = append(regions, Region{
			Fact: f,
			Slug: s,
			Rect: geometry.ToPixels(f.Box(), size),
		})
	}
	return regions
}

// Overlay maps the facts onto the current rendered size
func (v *Viewer) Overlay() []Region {
	return v.Regions(v.Size())
}

// Lens returns the zoom lens for the selected fact. ok is false when
// nothing is selected or the image has not been measured.
func (v *Viewer) Lens() (view geometry.LensView, ok bool) {
	fact, selected := v.SelectedFact()
	if !selected {
		return geometry.LensView{}, false
	}

	v.mu.Lock()
	size, zoom := v.size, v.zoom
	v.mu.Unlock()

	return geometry.Lens(fact.Box(), size, zoom)
}

// IsActive reports whether the fact is the highlighted one
func (v *Viewer) IsActive(id uuid.UUID) bool {
	active, ok := v.Highlighted()
	return ok && active == id
}
