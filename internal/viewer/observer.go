package viewer

import (
	"sync"

	"github.com/ppiankov/artexplorer/internal/geometry"
)

// SizeSource publishes the rendered size of the painting image.
// Subscribe returns a function that cancels the subscription; it is safe to
// call more than once.
type SizeSource interface {
	Subscribe(fn func(geometry.Size)) (unsubscribe func())
}

// SizeFeed is a SizeSource driven by explicit Publish calls. It replays the
// last published size to new subscribers.
type SizeFeed struct {
	mu     sync.Mutex
	last   geometry.Size
	nextID int
	subs   map[int]func(geometry.Size)
}

// NewSizeFeed creates an empty feed
func NewSizeFeed() *SizeFeed {
	return &SizeFeed{subs: make(map[int]func(geometry.Size))}
}

// Subscribe registers fn and immediately delivers the last known size
func (f *SizeFeed) Subscribe(fn func(geometry.Size)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	last := f.last
	f.mu.Unlock()

	if !last.IsZero() {
		fn(last)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

// Publish delivers size to every current subscriber
func (f *SizeFeed) Publish(size geometry.Size) {
	f.mu.Lock()
	f.last = size
	subs := make([]func(geometry.Size), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(size)
	}
}

// Subscribers returns the number of live subscriptions
func (f *SizeFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
