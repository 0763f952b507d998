// Package web serves the painting viewer pages.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ppiankov/artexplorer/internal/metrics"
	"github.com/ppiankov/artexplorer/internal/model"
	"github.com/ppiankov/artexplorer/internal/worker"
	"github.com/rs/zerolog"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
	clientIdle      = 10 * time.Minute
)

// Server is the page server
type Server struct {
	engine    *gin.Engine
	pages     Pages
	config    *model.Config
	templates map[string]*template.Template
	limiter   *worker.Limiter
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewServer builds the gin engine and registers every route. m may be nil.
func NewServer(cfg *model.Config, pages Pages, m *metrics.Metrics, logger zerolog.Logger) (*Server, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		engine:    gin.New(),
		pages:     pages,
		config:    cfg,
		templates: templates,
		limiter:   worker.NewLimiter(cfg.Server.RequestsPerSec, cfg.Server.Burst),
		metrics:   m,
		logger:    logger,
	}
	if err := s.engine.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := s.engine
	r.Use(gin.Recovery(), requestLogger(s.logger), pageMetrics(s.metrics))

	r.GET("/health", s.health)
	if s.config.Server.Metrics && s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	r.StaticFS("/static", staticFileSystem())

	pages := r.Group("/")
	pages.Use(rateLimit(s.limiter, s.metrics))
	pages.GET("/", s.home)
	pages.GET("/:slug", s.alias)
	pages.GET("/:slug/:painting", s.painting)

	r.NoRoute(func(c *gin.Context) {
		s.notFound(c, nil)
	})
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweepClients(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Str("api", s.config.API.BaseURL).Msg("serving")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// sweepClients drops per-client limiters for idle clients
func (s *Server) sweepClients(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.limiter.Sweep(clientIdle); n > 0 {
				s.logger.Debug().Int("clients", n).Msg("swept idle rate limiters")
			}
		}
	}
}
