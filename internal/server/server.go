// Package server exposes the progress engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/codepath/internal/logger"
	"github.com/abhisek/codepath/internal/progress"
)

// Options configures a Server.
type Options struct {
	// Env "prod" puts gin in release mode.
	Env string

	// AllowedOrigins lists CORS origins. Empty allows any origin.
	AllowedOrigins []string

	// Ping reports database health for /healthz. Optional.
	Ping func(ctx context.Context) error

	ShutdownTimeout time.Duration
	Logger          *logger.Logger
}

// Server is the HTTP API.
type Server struct {
	svc             *progress.Service
	ping            func(ctx context.Context) error
	logger          *logger.Logger
	shutdownTimeout time.Duration
	engine          *gin.Engine
}

// New builds the router.
func New(svc *progress.Service, opts Options) *Server {
	s := &Server{
		svc:             svc,
		ping:            opts.Ping,
		logger:          opts.Logger,
		shutdownTimeout: opts.ShutdownTimeout,
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 10 * time.Second
	}
	if opts.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), cors.New(corsConfig(opts.AllowedOrigins)))

	r.GET("/healthz", s.health)

	api := r.Group("/api", s.ensureUser())
	{
		api.GET("/curriculum", s.curriculum)
		api.GET("/curriculum/:slug", s.lesson)
		api.POST("/progress/validate", s.validate)
		api.POST("/progress/complete-lesson", s.completeLesson)
		api.GET("/review", s.review)
		api.GET("/leaderboard", s.leaderboard)
		api.GET("/me", s.me)
	}

	s.engine = r
	return s
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", UserHeader},
		ExposeHeaders: []string{UserHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
