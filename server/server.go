// Package server exposes the facade over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/razeghi71/insight/insight"
	"github.com/razeghi71/insight/logger"
	"github.com/razeghi71/insight/metrics"
)

// Server routes HTTP requests to a Facade.
type Server struct {
	facade *insight.Facade
	log    *slog.Logger
	router *gin.Engine
}

// New builds the router. log may be nil.
func New(facade *insight.Facade, log *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{facade: facade, log: logger.Or(log), router: gin.New()}

	s.router.Use(gin.Recovery())
	s.router.Use(s.requestMiddleware())

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	s.router.PUT("/dataset/:id/:kind", s.addDataset)
	s.router.DELETE("/dataset/:id", s.removeDataset)
	s.router.GET("/datasets", s.listDatasets)
	s.router.POST("/query", s.query)
	return s
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("server stopped")
	return nil
}
