package model

import (
	"github.com/google/uuid"

	"github.com/ppiankov/artexplorer/internal/geometry"
)

// GeometryRect is the only geometry type the viewer draws
const GeometryRect = "rect"

// Fact is an annotation bound to a region of a painting image.
// X, Y, W and H are fractions of the rendered image size.
type Fact struct {
	ID            uuid.UUID `json:"id"`
	PaintingID    uuid.UUID `json:"painting_id"`
	Name          string    `json:"name"`
	DescriptionMD string    `json:"description_md"`
	GeometryType  string    `json:"geometry_type"`
	X             float64   `json:"x"`
	Y             float64   `json:"y"`
	W             float64   `json:"w"`
	H             float64   `json:"h"`
	OrderIndex    int       `json:"order_index"`
}

// IsRect reports whether the fact carries a rectangular region
func (f *Fact) IsRect() bool {
	return f.GeometryType == GeometryRect
}

// Box returns the fact's fractional bounding box
func (f *Fact) Box() geometry.Box {
	return geometry.Box{X: f.X, Y: f.Y, W: f.W, H: f.H}
}
