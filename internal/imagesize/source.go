package imagesize

import (
	"context"
	"sync"

	"github.com/ppiankov/artexplorer/internal/geometry"
	"github.com/ppiankov/artexplorer/internal/viewer"
)

// source publishes the rendered size of one image once it is measured
type source struct {
	feed    *viewer.SizeFeed
	once    sync.Once
	measure func() geometry.Size
}

// Source returns a viewer.SizeSource for imageURL rendered displayWidth
// pixels wide. Measurement runs on the first subscription; if it fails
// nothing is published and subscribers keep the unmeasured size.
func (m *Measurer) Source(ctx context.Context, imageURL string, displayWidth float64) viewer.SizeSource {
	return &source{
		feed: viewer.NewSizeFeed(),
		measure: func() geometry.Size {
			return m.RenderedSize(ctx, imageURL, displayWidth)
		},
	}
}

func (s *source) Subscribe(fn func(geometry.Size)) func() {
	unsubscribe := s.feed.Subscribe(fn)
	s.once.Do(func() {
		if size := s.measure(); !size.IsZero() {
			s.feed.Publish(size)
		}
	})
	return unsubscribe
}
