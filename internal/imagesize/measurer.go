// Package imagesize reads the intrinsic dimensions of remote painting images
// from their header bytes.
package imagesize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/artexplorer/internal/cache"
	"github.com/ppiankov/artexplorer/internal/geometry"
	"github.com/ppiankov/artexplorer/internal/metrics"
	"github.com/ppiankov/artexplorer/internal/model"
	"github.com/ppiankov/artexplorer/internal/util"
	"github.com/ppiankov/artexplorer/internal/worker"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp" // register WebP
)

const cacheNamespace = "dims"

// maxCrawlDelay caps the robots.txt crawl-delay honoured while a page waits
const maxCrawlDelay = 2 * time.Second

var (
	// ErrDisabled is returned when measurement is turned off in config
	ErrDisabled = errors.New("image measurement disabled")
	// ErrDisallowed is returned when robots.txt forbids fetching the image
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

// Measurement outcomes
const (
	outcomeHit      = "hit"
	outcomeMeasured = "measured"
	outcomeSkipped  = "skipped"
	outcomeError    = "error"
)

// Measurer fetches just enough of an image to decode its dimensions
type Measurer struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	enabled    bool
	cache      cache.Cache
	ttl        time.Duration
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// Options carries the optional collaborators of a Measurer
type Options struct {
	Cache   cache.Cache
	Robots  *util.RobotsChecker // nil skips robots.txt checks
	Limiter *worker.Limiter
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// NewMeasurer creates a measurer from the imagesize and http config sections
func NewMeasurer(cfg *model.Config, opts Options) *Measurer {
	c := opts.Cache
	if c == nil {
		c = cache.Noop{}
	}

	maxBytes := cfg.ImageSize.MaxHeaderBytes
	if maxBytes <= 0 {
		maxBytes = 256 << 10
	}

	return &Measurer{
		httpClient: util.NewHTTPClient(cfg.HTTP, 3),
		userAgent:  cfg.HTTP.UserAgent,
		maxBytes:   maxBytes,
		enabled:    cfg.ImageSize.Enabled,
		cache:      c,
		ttl:        cfg.Cache.TTL,
		robots:     opts.Robots,
		limiter:    opts.Limiter,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
}

// Measure returns the intrinsic dimensions and format of the image at imageURL
func (m *Measurer) Measure(ctx context.Context, imageURL string) (image.Config, string, error) {
	if !m.enabled {
		return image.Config{}, "", ErrDisabled
	}

	key := cache.Key(cacheNamespace, imageURL)
	if cached, ok := m.cache.Get(key); ok {
		if cfg, format, ok := decodeEntry(cached); ok {
			m.metrics.Measurement(outcomeHit)
			return cfg, format, nil
		}
	}

	if m.robots != nil {
		allowed, delay, err := m.robots.CanFetch(ctx, imageURL)
		if err != nil {
			m.metrics.Measurement(outcomeError)
			return image.Config{}, "", err
		}
		if !allowed {
			m.metrics.Measurement(outcomeSkipped)
			return image.Config{}, "", ErrDisallowed
		}
		if m.limiter != nil {
			if err := m.limiter.WaitWithDelay(ctx, imageURL, min(delay, maxCrawlDelay)); err != nil {
				return image.Config{}, "", fmt.Errorf("rate limit: %w", err)
			}
		}
	} else if m.limiter != nil {
		if err := m.limiter.Wait(ctx, imageURL); err != nil {
			return image.Config{}, "", fmt.Errorf("rate limit: %w", err)
		}
	}

	cfg, format, err := m.fetchConfig(ctx, imageURL)
	if err != nil {
		m.metrics.Measurement(outcomeError)
		return image.Config{}, "", err
	}

	_ = m.cache.Set(key, encodeEntry(cfg, format), m.ttl)
	m.metrics.Measurement(outcomeMeasured)
	return cfg, format, nil
}

func (m *Measurer) fetchConfig(ctx context.Context, imageURL string) (image.Config, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", m.userAgent)
	req.Header.Set("Accept", "image/*")
	req.Header.Set("Range", "bytes=0-"+strconv.FormatInt(m.maxBytes-1, 10))

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return image.Config{}, "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	head, err := io.ReadAll(io.LimitReader(resp.Body, m.maxBytes))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("read body: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(head))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("decode header: %w", err)
	}
	return cfg, format, nil
}

// RenderedSize measures the image and scales it to displayWidth. Any failure
// yields the zero size, which the viewer treats as "not measured".
func (m *Measurer) RenderedSize(ctx context.Context, imageURL string, displayWidth float64) geometry.Size {
	cfg, _, err := m.Measure(ctx, imageURL)
	if err != nil {
		m.logger.Debug().Err(err).Str("url", imageURL).Msg("image not measured")
		return geometry.Size{}
	}
	intrinsic := geometry.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}
	return intrinsic.FitWidth(displayWidth)
}

func encodeEntry(cfg image.Config, format string) []byte {
	return []byte(strconv.Itoa(cfg.Width) + "x" + strconv.Itoa(cfg.Height) + ":" + format)
}

func decodeEntry(b []byte) (image.Config, string, bool) {
	dims, format, ok := strings.Cut(string(b), ":")
	if !ok {
		return image.Config{}, "", false
	}
	w, h, ok := strings.Cut(dims, "x")
	if !ok {
		return image.Config{}, "", false
	}
	width, errW := strconv.Atoi(w)
	height, errH := strconv.Atoi(h)
	if errW != nil || errH != nil {
		return image.Config{}, "", false
	}
	return image.Config{Width: width, Height: height}, format, true
}
