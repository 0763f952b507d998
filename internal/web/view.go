package web

import (
	"html/template"
	"strings"
	"unicode"

	"github.com/ppiankov/artexplorer/internal/geometry"
	"github.com/ppiankov/artexplorer/internal/model"
	"github.com/ppiankov/artexplorer/internal/pipeline"
)

// nominalSize is the overlay coordinate space used before the image is measured.
// The SVG stretches it over the image with preserveAspectRatio="none".
var nominalSize = geometry.Size{Width: 1000, Height: 1000}

type layoutView struct {
	SiteTitle       string
	Title           string
	MetaDescription string
	Canonical       string
}

type homeView struct {
	layoutView
	HomePath string
}

type notFoundView struct {
	layoutView
	Requested string
}

type paintingView struct {
	layoutView
	Painting    *model.Painting
	Attribution attributionView
	Image       imageView
	Regions     []regionView
	Rail        []railItem
	HoverCSS    template.CSS
	Selected    *selectedView
	ClearURL    string
	ShowOverlay bool
}

type attributionView struct {
	Artist      string
	Museum      string
	Genres      string
	License     string
	LicenseLink string
	Source      string
}

type imageView struct {
	URL      string
	Alt      string
	Width    int
	Height   int
	Measured bool
	ViewBox  string
}

type regionView struct {
	Slug   string
	Name   string
	URL    string
	X      string
	Y      string
	Width  string
	Height string
}

type railItem struct {
	Slug   string
	Name   string
	URL    string
	Active bool
	Drawn  bool // false for facts whose geometry is not drawn
}

type selectedView struct {
	Slug        string
	Name        string
	Description template.HTML
	Lens        *lensView
}

type lensView struct {
	Width              string
	Height             string
	Image              string
	BackgroundSize     string
	BackgroundPosition string
}

// buildPaintingView maps a loaded page onto the painting template
func buildPaintingView(site string, page *pipeline.Page) paintingView {
	p := page.Painting
	v := page.Viewer
	path := p.Path()

	size := v.Size()
	measured := !size.IsZero()
	space := size
	if !measured {
		space = nominalSize
	}

	selected, isSelected := v.SelectedFact()

	view := paintingView{
		layoutView: layoutView{
			SiteTitle:       site,
			Title:           p.Name + " · " + p.ArtistName,
			MetaDescription: page.MetaDescription,
			Canonical:       path,
		},
		Painting: p,
		Attribution: attributionView{
			Artist:      p.ArtistName,
			Museum:      p.Museum(),
			Genres:      p.GenresLabel(),
			License:     p.License(),
			LicenseLink: p.LicenseLink(),
			Source:      p.SourceURL,
		},
		Image: imageView{
			URL:      p.ImageURL,
			Alt:      p.AltText(),
			Width:    int(size.Width + 0.5),
			Height:   int(size.Height + 0.5),
			Measured: measured,
			ViewBox:  "0 0 " + formatNum(space.Width) + " " + formatNum(space.Height),
		},
		ClearURL:    withQuery(path, v.ClearQuery()),
		ShowOverlay: !isSelected,
	}

	for _, r := range v.Regions(space) {
		view.Regions = append(view.Regions, regionView{
			Slug:   r.Slug,
			Name:   r.Fact.Name,
			URL:    withQuery(path, v.SelectQuery(r.Fact.ID)),
			X:      formatNum(r.Rect.Left),
			Y:      formatNum(r.Rect.Top),
			Width:  formatNum(r.Rect.Width),
			Height: formatNum(r.Rect.Height),
		})
	}

	slugs := v.Slugs()
	for _, f := range v.Facts() {
		s, _ := slugs.SlugOf(f.ID)
		view.Rail = append(view.Rail, railItem{
			Slug:   s,
			Name:   f.Name,
			URL:    withQuery(path, v.SelectQuery(f.ID)),
			Active: v.IsActive(f.ID),
			Drawn:  f.IsRect(),
		})
	}

	if isSelected {
		s, _ := slugs.SlugOf(selected.ID)
		view.Selected = &selectedView{
			Slug:        s,
			Name:        selected.Name,
			Description: page.Description,
		}
		view.Title = selected.Name + " · " + view.Title
		if lens, ok := v.Lens(); ok {
			view.Selected.Lens = newLensView(lens, p.ImageURL)
		}
	} else {
		view.HoverCSS = hoverCSS(view.Rail)
	}

	return view
}

func newLensView(l geometry.LensView, image string) *lensView {
	return &lensView{
		Width:              formatNum(l.Width) + "px",
		Height:             formatNum(l.Height) + "px",
		Image:              image,
		BackgroundSize:     l.BackgroundSize(),
		BackgroundPosition: l.BackgroundPosition(),
	}
}

// hoverCSS emits one rule pair per fact so hovering either the region or its
// rail entry highlights both
func hoverCSS(items []railItem) template.CSS {
	var sb strings.Builder
	for _, item := range items {
		if !cssSafeSlug(item.Slug) {
			continue
		}
		sel := `[data-fact="` + item.Slug + `"]`
		sb.WriteString(".viewer:has(" + sel + ":hover) .overlay " + sel + " rect{fill-opacity:.18;stroke-opacity:1}\n")
		sb.WriteString(".viewer:has(" + sel + ":hover) .rail " + sel + "{background:var(--hover)}\n")
	}
	return template.CSS(sb.String())
}

// cssSafeSlug reports whether s can be embedded in a quoted attribute selector.
// Slugs only ever contain letters, digits and hyphens.
func cssSafeSlug(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '-' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func withQuery(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}

// formatNum prints v with at most two decimals and no trailing zeros
func formatNum(v float64) string {
	return geometry.FormatPixels(v)
}
