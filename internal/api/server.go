package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/spigell/salary-spy/internal/lookup"
)

const shutdownTimeout = 10 * time.Second

// Gateway is the store view the API reports on.
type Gateway interface {
	lookup.Searcher
	Available() bool
	Driver() string
	Reason() error
}

// Server exposes lookups over HTTP. All requests share one gateway.
type Server struct {
	Echo *echo.Echo

	handler *Handler
	logger  *zap.Logger
}

func New(svc *lookup.Service, gateway Gateway, voiceEnabled bool, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		Echo:    e,
		handler: NewHandler(svc, gateway, voiceEnabled),
		logger:  logger,
	}
	s.registerMiddlewares()
	s.registerRoutes()

	return s
}

func (s *Server) registerMiddlewares() {
	s.Echo.Use(middleware.Logger())
	s.Echo.Use(middleware.Recover())
}

func (s *Server) registerRoutes() {
	g := s.Echo.Group("/api")
	g.GET("/search", s.handler.Search)
	g.GET("/status", s.handler.Status)
	g.GET("/export", s.handler.Export)
}

// Run serves on address until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, address string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", zap.String("address", address))
		errCh <- s.Echo.Start(address)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}
