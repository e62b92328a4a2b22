// Package api serves the bed-management HTTP surface: the JSON API, the
// login endpoint, and the websocket/SSE push channels.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmendes/bedboard/internal/auth"
	"github.com/jmendes/bedboard/internal/ward"
	"go.uber.org/zap"
)

// StartOpts holds configuration for the API server.
type StartOpts struct {
	Registry *ward.Registry
	Auth     *auth.Service
	Hub      *Hub
	Port     int
	Log      *zap.Logger
}

// NewRouter builds the gin engine with all routes registered. Split out
// of Start so tests can drive the router with httptest.
func NewRouter(opts StartOpts) *gin.Engine {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(opts.Log))

	registerRoutes(router, opts)
	return router
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Registry == nil {
		return fmt.Errorf("api: registry is required")
	}
	if opts.Auth == nil {
		return fmt.Errorf("api: auth service is required")
	}
	if opts.Hub == nil {
		return fmt.Errorf("api: hub is required")
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Port <= 0 {
		opts.Port = 5000
	}

	router := NewRouter(opts)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	opts.Log.Info("api server listening", zap.Int("port", opts.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

// requestLogger logs each request at debug with method, path and status.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
