// Package api serves dashboard views over HTTP as JSON.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/pable/go-gps-metrics/internal/dashboard"
	"github.com/pable/go-gps-metrics/internal/model"
)

// Config holds configuration for the API server.
type Config struct {
	Addr           string
	RateLimit      float64 // requests per second per client; 0 disables limiting
	Burst          int
	CacheTTL       time.Duration
	AllowedOrigins []string
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1:8080",
		RateLimit:      20,
		Burst:          40,
		CacheTTL:       5 * time.Minute,
		AllowedOrigins: []string{"*"},
	}
}

// snapshot is an immutable dataset plus the generation it was published under.
type snapshot struct {
	ds  *model.Dataset
	gen uint64
}

// Server is the REST API server. The dataset it serves can be replaced at any
// time with Swap; requests in flight keep the snapshot they started with.
type Server struct {
	cfg        Config
	opts       dashboard.Options
	router     *chi.Mux
	httpServer *http.Server
	validate   *validator.Validate

	data atomic.Pointer[snapshot]
	gen  atomic.Uint64

	views    *cache.Cache
	limiters *cache.Cache
}

// NewServer creates a server publishing ds.
func NewServer(cfg Config, opts dashboard.Options, ds *model.Dataset) *Server {
	s := &Server{
		cfg:      cfg,
		opts:     opts,
		router:   chi.NewRouter(),
		validate: newValidator(),
		views:    cache.New(cfg.CacheTTL, 2*cfg.CacheTTL+time.Minute),
		limiters: cache.New(10*time.Minute, 20*time.Minute),
	}
	s.Swap(ds)
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Swap publishes ds as the dataset for subsequent requests.
func (s *Server) Swap(ds *model.Dataset) {
	g := s.gen.Add(1)
	s.data.Store(&snapshot{ds: ds, gen: g})
	s.views.Flush()
	datasetRecords.Set(float64(ds.Len()))
	log.Info().Uint64("generation", g).Int("records", ds.Len()).Msg("dataset published")
}

// Generation returns the generation of the current dataset.
func (s *Server) Generation() uint64 {
	return s.data.Load().gen
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.instrument)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if s.cfg.RateLimit > 0 {
		s.router.Use(s.rateLimit)
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Msg("API server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
