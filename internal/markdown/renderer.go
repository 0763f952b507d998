// Package markdown renders fact commentary to sanitized HTML.
package markdown

import (
	"bytes"
	"html"
	"html/template"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/ppiankov/artexplorer/internal/cache"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const cacheNamespace = "md"

// Renderer converts GitHub-flavoured markdown into safe HTML fragments
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	cache  cache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRenderer creates a renderer. A nil cache disables memoization.
func NewRenderer(c cache.Cache, ttl time.Duration, logger zerolog.Logger) *Renderer {
	if c == nil {
		c = cache.Noop{}
	}

	policy := bluemonday.UGCPolicy()
	policy.AllowElements("del")
	policy.AllowAttrs("align").Matching(bluemonday.Paragraph).OnElements("th", "td")

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
				extension.Linkify,
			),
		),
		policy: policy,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// Render returns the sanitized HTML for source. It never fails: if conversion
// goes wrong the source is returned as escaped text.
func (r *Renderer) Render(source string) template.HTML {
	if source == "" {
		return ""
	}

	key := cache.Key(cacheNamespace, source)
	if cached, ok := r.cache.Get(key); ok {
		return template.HTML(cached)
	}

	out, err := r.render(source)
	if err != nil {
		r.logger.Warn().Err(err).Msg("markdown render failed, falling back to escaped text")
		return template.HTML("<p>" + html.EscapeString(source) + "</p>")
	}

	_ = r.cache.Set(key, out, r.ttl)
	return template.HTML(out)
}

func (r *Renderer) render(source string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return nil, err
	}

	safe := r.policy.SanitizeBytes(buf.Bytes())
	return rewriteLinks(safe)
}

// Excerpt returns up to n runes of plain text from source, cut on a word
// boundary, for use in meta descriptions
func (r *Renderer) Excerpt(source string, n int) string {
	rendered := r.Render(source)
	if rendered == "" {
		return ""
	}
	return truncate(plainText(string(rendered)), n)
}
