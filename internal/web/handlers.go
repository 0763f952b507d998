package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/ppiankov/artexplorer/internal/model"
	"github.com/ppiankov/artexplorer/internal/pipeline"
)

// Pages is the data source behind the page handlers
type Pages interface {
	Painting(ctx context.Context, artistSlug, paintingSlug string) (*model.Painting, error)
	PaintingByAlias(ctx context.Context, combinedSlug string) (*model.Painting, error)
	BuildPage(ctx context.Context, painting *model.Painting, query url.Values) *pipeline.Page
}

func (s *Server) home(c *gin.Context) {
	s.render(c, http.StatusOK, "home", homeView{
		layoutView: layoutView{
			SiteTitle:       s.config.Viewer.SiteTitle,
			MetaDescription: "Explore paintings region by region.",
			Canonical:       "/",
		},
		HomePath: "/" + s.config.Viewer.HomePainting,
	})
}

func (s *Server) painting(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.Server.RenderTimeout)
	defer cancel()

	// The first segment is shared with the alias route, hence its name
	artistSlug, paintingSlug := c.Param("slug"), c.Param("painting")

	painting, err := s.pages.Painting(ctx, artistSlug, paintingSlug)
	if errors.Is(err, pipeline.ErrRateLimited) {
		respondError(c, http.StatusServiceUnavailable, "backend busy, try again")
		return
	}
	if err != nil {
		s.notFound(c, err)
		return
	}

	// Aliased slugs resolve to a painting with a different canonical path
	if canonical := painting.Path(); canonical != c.Request.URL.Path {
		s.redirectCanonical(c, canonical)
		return
	}

	page := s.pages.BuildPage(ctx, painting, c.Request.URL.Query())
	s.render(c, http.StatusOK, "painting", buildPaintingView(s.config.Viewer.SiteTitle, page))
}

func (s *Server) alias(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.Server.RenderTimeout)
	defer cancel()

	painting, err := s.pages.PaintingByAlias(ctx, c.Param("slug"))
	if errors.Is(err, pipeline.ErrRateLimited) {
		respondError(c, http.StatusServiceUnavailable, "backend busy, try again")
		return
	}
	if err != nil {
		s.notFound(c, err)
		return
	}
	s.redirectCanonical(c, painting.Path())
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) redirectCanonical(c *gin.Context, path string) {
	c.Redirect(http.StatusMovedPermanently, withQuery(path, c.Request.URL.RawQuery))
}

func (s *Server) notFound(c *gin.Context, err error) {
	if err != nil && !errors.Is(err, pipeline.ErrPaintingNotFound) {
		_ = c.Error(err)
	}
	s.logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("painting not found")

	s.render(c, http.StatusNotFound, "notfound", notFoundView{
		layoutView: layoutView{
			SiteTitle: s.config.Viewer.SiteTitle,
			Title:     "Not found",
		},
		Requested: c.Request.URL.Path,
	})
}

func (s *Server) render(c *gin.Context, status int, page string, data any) {
	c.Render(status, render.HTML{
		Template: s.templates[page],
		Name:     "layout",
		Data:     data,
	})
}
