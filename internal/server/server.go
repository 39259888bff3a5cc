package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/KaramelBytes/mortalisys/internal/analysis"
)

// Options configures the dashboard server.
type Options struct {
	// DataPath is the default dataset, reloaded by /reset.
	DataPath string
	Load     analysis.Options
	// MaxUploadMB caps POST /upload bodies. Zero means 32.
	MaxUploadMB int
	// Defaults replace empty selector values.
	Defaults analysis.SelectionLabels
}

// Server serves the dashboard and its JSON API over one frozen table.
type Server struct {
	e     *echo.Echo
	log   zerolog.Logger
	opts  Options
	table atomic.Pointer[analysis.Table]
}

// New wires middleware and routes around the initial table.
func New(opts Options, logger zerolog.Logger, initial *analysis.Table) *Server {
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 32
	}
	s := &Server{e: echo.New(), log: logger, opts: opts}
	s.table.Store(initial)

	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.Use(Recovery(logger))
	s.e.Use(RequestID())
	s.e.Use(Logger(logger))

	s.e.GET("/", s.handleDashboard)
	s.e.GET("/charts", s.handleCharts)
	s.e.POST("/reset", s.handleReset)
	s.e.POST("/upload", s.handleUpload, echomw.BodyLimit(fmt.Sprintf("%dM", opts.MaxUploadMB)))
	s.e.GET("/healthz", s.handleHealth)

	api := s.e.Group("/api")
	api.GET("/summary", s.handleSummary)
	api.GET("/aggregate", s.handleAggregate)
	api.GET("/categories", s.handleCategories)
	api.GET("/selections", s.handleSelections)
	return s
}

// Table returns the current dataset snapshot.
func (s *Server) Table() *analysis.Table { return s.table.Load() }

// Swap replaces the dataset. In-flight requests keep their snapshot.
func (s *Server) Swap(t *analysis.Table) {
	s.table.Store(t)
	s.log.Info().Str("dataset", t.Name()).Int("records", t.Len()).Msg("dataset loaded")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then shuts down with a 10s grace period.
func (s *Server) Run(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("starting server")
		if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.e.Shutdown(sctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info().Msg("server stopped")
	return nil
}
