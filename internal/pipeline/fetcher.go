package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/ppiankov/artexplorer/internal/metrics"
	"github.com/ppiankov/artexplorer/internal/model"
	"github.com/ppiankov/artexplorer/internal/util"
	"github.com/ppiankov/artexplorer/internal/worker"
	"github.com/rs/zerolog"
)

// ErrPaintingNotFound is wrapped by every painting lookup failure. Callers
// render a not-found page for it regardless of the underlying cause.
var ErrPaintingNotFound = errors.New("painting not found")

// ErrRateLimited means the request never left the process: the local limiter
// gave up before the backend was asked
var ErrRateLimited = errors.New("rate limited locally")

// Endpoint labels for metrics
const (
	endpointPainting = "painting"
	endpointFacts    = "facts"
	endpointAlias    = "alias"
)

// Fetcher reads painting and fact records from the backend API
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxBytes   int64
	limiter    *worker.Limiter
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewFetcher creates a new Fetcher with the given configuration. limiter and
// m may be nil; a nil limiter sends every request straight away.
func NewFetcher(cfg *model.Config, limiter *worker.Limiter, m *metrics.Metrics, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		httpClient: util.NewHTTPClient(cfg.HTTP, 3),
		baseURL:    strings.TrimRight(cfg.API.BaseURL, "/"),
		userAgent:  cfg.HTTP.UserAgent,
		maxBytes:   cfg.HTTP.MaxBodyBytes,
		limiter:    limiter,
		metrics:    m,
		logger:     logger,
	}
}

// FetchPainting retrieves a painting by its artist and painting slugs
func (f *Fetcher) FetchPainting(ctx context.Context, artistSlug, paintingSlug string) (*model.Painting, error) {
	endpoint := f.baseURL + "/paintings/" + url.PathEscape(artistSlug) + "/" + url.PathEscape(paintingSlug)
	return f.fetchPainting(ctx, endpointPainting, endpoint)
}

// FetchPaintingByAlias retrieves a painting by a combined "artist-painting"
// alias. The backend answers with a redirect to the canonical resource.
func (f *Fetcher) FetchPaintingByAlias(ctx context.Context, combinedSlug string) (*model.Painting, error) {
	endpoint := f.baseURL + "/paintings/" + url.PathEscape(combinedSlug)
	return f.fetchPainting(ctx, endpointAlias, endpoint)
}

func (f *Fetcher) fetchPainting(ctx context.Context, label, endpoint string) (*model.Painting, error) {
	var painting model.Painting
	if err := f.getJSON(ctx, endpoint, &painting); err != nil {
		if errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		f.metrics.Upstream(label, outcome(err))
		return nil, fmt.Errorf("%w: %w", ErrPaintingNotFound, err)
	}
	if painting.ID == uuid.Nil || painting.ArtistSlug == "" || painting.PaintingSlug == "" {
		f.metrics.Upstream(label, metrics.OutcomeError)
		return nil, fmt.Errorf("%w: incomplete record from %s", ErrPaintingNotFound, endpoint)
	}

	f.metrics.Upstream(label, metrics.OutcomeOK)
	return &painting, nil
}

// FetchFacts retrieves the facts of a painting ordered by order_index. It
// never fails: any error is logged and yields an empty list.
func (f *Fetcher) FetchFacts(ctx context.Context, paintingID uuid.UUID) []model.Fact {
	facts, err := f.fetchFacts(ctx, paintingID)
	if err != nil {
		f.logger.Warn().Err(err).Str("painting_id", paintingID.String()).Msg("facts unavailable, rendering without overlays")
		return []model.Fact{}
	}
	return facts
}

// fetchFacts is FetchFacts with the failure reported
func (f *Fetcher) fetchFacts(ctx context.Context, paintingID uuid.UUID) ([]model.Fact, error) {
	endpoint := f.baseURL + "/paintings/by-id/" + paintingID.String() + "/facts"

	var facts []model.Fact
	if err := f.getJSON(ctx, endpoint, &facts); err != nil {
		if !errors.Is(err, ErrRateLimited) {
			f.metrics.Upstream(endpointFacts, outcome(err))
		}
		return nil, err
	}
	f.metrics.Upstream(endpointFacts, metrics.OutcomeOK)

	if facts == nil {
		facts = []model.Fact{}
	}
	sort.SliceStable(facts, func(i, j int) bool {
		return facts[i].OrderIndex < facts[j].OrderIndex
	})
	return facts, nil
}

// statusError is returned for non-2xx responses
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.code, e.status)
}

func outcome(err error) string {
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeError
}

// getJSON performs a rate-limited GET and decodes the JSON body into v
func (f *Fetcher) getJSON(ctx context.Context, rawURL string, v any) error {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, status: http.StatusText(resp.StatusCode)}
	}

	// Read body with size limit
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
