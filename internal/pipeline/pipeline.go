package pipeline

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/artexplorer/internal/audit"
	"github.com/ppiankov/artexplorer/internal/cache"
	"github.com/ppiankov/artexplorer/internal/imagesize"
	"github.com/ppiankov/artexplorer/internal/markdown"
	"github.com/ppiankov/artexplorer/internal/metrics"
	"github.com/ppiankov/artexplorer/internal/model"
	"github.com/ppiankov/artexplorer/internal/slug"
	"github.com/ppiankov/artexplorer/internal/util"
	"github.com/ppiankov/artexplorer/internal/validate"
	"github.com/ppiankov/artexplorer/internal/viewer"
	"github.com/ppiankov/artexplorer/internal/worker"
	"github.com/rs/zerolog"
)

// metaDescriptionLength bounds the page's meta description
const metaDescriptionLength = 160

// Deps are the shared collaborators of a Pipeline. All fields are optional.
type Deps struct {
	Cache   cache.Cache
	Limiter *worker.Limiter
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// Pipeline assembles painting pages and catalogue reports from backend data
type Pipeline struct {
	fetcher   *Fetcher // page renders, never throttled locally
	checker   *Fetcher // catalogue checks, shares the per-host limiter
	measurer  *imagesize.Measurer
	renderer  *markdown.Renderer
	validator *validate.Validator
	auditor   *audit.Auditor
	config    *model.Config
	logger    zerolog.Logger
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, deps Deps) *Pipeline {
	c := deps.Cache
	if c == nil {
		c = cache.New(cfg.Cache.Enabled, cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = worker.NewLimiter(cfg.API.RequestsPerSec, cfg.API.Burst)
	}

	var robots *util.RobotsChecker
	if cfg.ImageSize.RespectRobots {
		robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout, util.NewHTTPClient(cfg.HTTP, 3))
	}

	return &Pipeline{
		fetcher: NewFetcher(cfg, nil, deps.Metrics, deps.Logger),
		checker: NewFetcher(cfg, limiter, deps.Metrics, deps.Logger),
		measurer: imagesize.NewMeasurer(cfg, imagesize.Options{
			Cache:   c,
			Robots:  robots,
			Limiter: limiter,
			Metrics: deps.Metrics,
			Logger:  deps.Logger,
		}),
		renderer:  markdown.NewRenderer(c, cfg.Cache.TTL, deps.Logger),
		validator: validate.NewValidator(cfg.HTTP, cfg.Concurrency.ValidationWorkers, robots),
		auditor:   audit.NewAuditor(),
		config:    cfg,
		logger:    deps.Logger,
	}
}

// Page is everything the painting template needs
type Page struct {
	Painting        *model.Painting
	Viewer          *viewer.Viewer
	Description     template.HTML // Rendered markdown of the selected fact
	MetaDescription string
}

// Painting fetches a painting by its slugs
func (p *Pipeline) Painting(ctx context.Context, artistSlug, paintingSlug string) (*model.Painting, error) {
	return p.fetcher.FetchPainting(ctx, artistSlug, paintingSlug)
}

// PaintingByAlias fetches a painting by its combined alias slug
func (p *Pipeline) PaintingByAlias(ctx context.Context, combinedSlug string) (*model.Painting, error) {
	return p.fetcher.FetchPaintingByAlias(ctx, combinedSlug)
}

// BuildPage fetches the painting's facts, measures its image and builds the
// viewer with the selection taken from query
func (p *Pipeline) BuildPage(ctx context.Context, painting *model.Painting, query url.Values) *Page {
	facts := p.fetcher.FetchFacts(ctx, painting.ID)

	v := viewer.New(facts, viewer.WithZoom(p.config.Viewer.LensZoom))
	unsubscribe := v.Observe(p.measurer.Source(ctx, painting.ImageURL, p.config.Viewer.DisplayWidth))
	defer unsubscribe()

	v.Navigate(query)

	page := &Page{
		Painting:        painting,
		Viewer:          v,
		MetaDescription: painting.AltText(),
	}

	if fact, ok := v.SelectedFact(); ok {
		page.Description = p.renderer.Render(fact.DescriptionMD)
		if excerpt := p.renderer.Excerpt(fact.DescriptionMD, metaDescriptionLength); excerpt != "" {
			page.MetaDescription = excerpt
		}
	}

	p.logger.Debug().
		Str("painting", painting.Path()).
		Int("facts", len(facts)).
		Stringer("state", v.State()).
		Msg("page built")

	return page
}

// LoadPage fetches a painting and builds its page
func (p *Pipeline) LoadPage(ctx context.Context, artistSlug, paintingSlug string, query url.Values) (*Page, error) {
	painting, err := p.Painting(ctx, artistSlug, paintingSlug)
	if err != nil {
		return nil, err
	}
	return p.BuildPage(ctx, painting, query), nil
}

// SplitKey parses an "artist/painting" catalogue key
func SplitKey(key string) (artistSlug, paintingSlug string, err error) {
	artistSlug, paintingSlug, ok := strings.Cut(strings.Trim(key, "/"), "/")
	if !ok || artistSlug == "" || paintingSlug == "" || strings.Contains(paintingSlug, "/") {
		return "", "", fmt.Errorf("invalid painting key %q: want artist/painting", key)
	}
	return artistSlug, paintingSlug, nil
}

// CheckPainting audits one catalogue entry. A painting that cannot be
// fetched is a finding, not an error; only a malformed key fails.
func (p *Pipeline) CheckPainting(ctx context.Context, key string) (*model.Report, error) {
	artistSlug, paintingSlug, err := SplitKey(key)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		Key:       key,
		CheckedAt: time.Now().UTC(),
	}

	painting, err := p.checker.FetchPainting(ctx, artistSlug, paintingSlug)
	if errors.Is(err, ErrRateLimited) {
		return nil, err
	}
	if err != nil {
		report.Signals = []model.Signal{p.auditor.Missing(key, err)}
		return report, nil
	}

	facts, err := p.checker.fetchFacts(ctx, painting.ID)
	if errors.Is(err, ErrRateLimited) {
		return nil, err
	}
	if err != nil {
		p.logger.Warn().Err(err).Str("painting", painting.Path()).Msg("facts unavailable")
		facts = []model.Fact{}
	}
	mapping := slug.Assign(facts)
	links := p.validator.Validate(ctx, painting.Links())

	report.Name = painting.Name
	report.Path = painting.Path()
	report.FactsCount = len(facts)
	report.Declared = painting.FactsCount
	report.Slugs = mapping.Slugs()
	report.Links = links
	report.Signals = p.auditor.Audit(painting, facts, mapping, links)

	return report, nil
}
