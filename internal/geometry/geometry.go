// Package geometry maps fractional fact regions onto rendered image pixels.
package geometry

// Size is the rendered size of an image in pixels
type Size struct {
	Width  float64
	Height float64
}

// IsZero reports whether the size has not been measured yet
func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Scale returns the size multiplied by factor
func (s Size) Scale(factor float64) Size {
	return Size{Width: s.Width * factor, Height: s.Height * factor}
}

// FitWidth returns a size of the given width keeping the aspect ratio of s
func (s Size) FitWidth(width float64) Size {
	if s.IsZero() || width <= 0 {
		return Size{}
	}
	return Size{Width: width, Height: s.Height * width / s.Width}
}

// Box is a rectangle in fractions of the image size
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

// Valid reports whether the box lies within the image and is not empty
func (b Box) Valid() bool {
	return b.X >= 0 && b.X <= 1 &&
		b.Y >= 0 && b.Y <= 1 &&
		b.W > 0 && b.W <= 1 &&
		b.H > 0 && b.H <= 1
}

// Rect is a rectangle in pixels
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Center returns the rectangle's center point
func (r Rect) Center() (x, y float64) {
	return r.Left + r.Width/2, r.Top + r.Height/2
}

// ToPixels maps a fractional box onto an image rendered at size
func ToPixels(b Box, size Size) Rect {
	return Rect{
		Left:   b.X * size.Width,
		Top:    b.Y * size.Height,
		Width:  b.W * size.Width,
		Height: b.H * size.Height,
	}
}
