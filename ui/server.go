// Package ui exposes the survey export operations over HTTP with gin.
package ui

import (
	"context"
	"log"
	"net/http"
	"time"

	"gosurvey/app"
	"gosurvey/internal/config"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP surface over the export service.
type Server struct {
	router  *gin.Engine
	exports *app.ExportService
	config  *config.Config
	http    *http.Server
}

// NewServer creates a new web server instance
func NewServer(cfg *config.Config, exports *app.ExportService) *Server {
	gin.SetMode(cfg.Server.GinMode)
	s := &Server{
		router:  gin.Default(),
		exports: exports,
		config:  cfg,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/surveys/:id/export", s.handleResponsesExport)
		api.POST("/surveys/:id/analytics", s.handleAnalytics)
		api.POST("/surveys/:id/analytics/export", s.handleAnalyticsExport)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Run starts the server and blocks until the context is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] listening on :%s", s.config.Server.Port)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()
		log.Printf("[Server] shutting down")
		return s.http.Shutdown(shutdownCtx)
	}
}

// timestamped builds the export filename with a sortable timestamp.
func timestamped(prefix string) string {
	return prefix + "_" + time.Now().Format("20060102_150405") + ".xlsx"
}
