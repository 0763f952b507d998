package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultZoom is the lens magnification used when none is configured
const DefaultZoom = 3

// LensView describes a magnified crop of the image that shows one box.
// The image is drawn as a background scaled by the zoom factor and shifted
// so the box's top-left corner sits at the lens origin.
type LensView struct {
	Width            float64
	Height           float64
	BackgroundWidth  float64
	BackgroundHeight float64
	OffsetX          float64
	OffsetY          float64
}

// Lens computes the lens for box on an image rendered at size.
// ok is false while the size is unknown.
func Lens(b Box, size Size, zoom float64) (view LensView, ok bool) {
	if size.IsZero() {
		return LensView{}, false
	}
	if zoom <= 0 {
		zoom = DefaultZoom
	}

	r := ToPixels(b, size)
	return LensView{
		Width:            r.Width * zoom,
		Height:           r.Height * zoom,
		BackgroundWidth:  size.Width * zoom,
		BackgroundHeight: size.Height * zoom,
		OffsetX:          -r.Left * zoom,
		OffsetY:          -r.Top * zoom,
	}, true
}

// BackgroundSize renders the CSS background-size value
func (l LensView) BackgroundSize() string {
	return fmt.Sprintf("%spx %spx", FormatPixels(l.BackgroundWidth), FormatPixels(l.BackgroundHeight))
}

// BackgroundPosition renders the CSS background-position value
func (l LensView) BackgroundPosition() string {
	return fmt.Sprintf("%spx %spx", FormatPixels(l.OffsetX), FormatPixels(l.OffsetY))
}

// FormatPixels formats a pixel value with at most two decimals and no trailing zeros
func FormatPixels(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}
