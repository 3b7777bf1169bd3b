// Package server serves the one-button web page that triggers a roll.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"dinnerdice/internal/picker"
	"dinnerdice/internal/roller"

	"github.com/gin-gonic/gin"
)

// Roller runs one roll.
type Roller interface {
	Roll(ctx context.Context, cuisine string) (*roller.Result, error)
}

// Config is the dependency bag passed to New.
type Config struct {
	Addr   string
	Mode   string
	Roller Roller
}

// Server holds the gin engine and the roller it triggers.
type Server struct {
	gin    *gin.Engine
	logger *slog.Logger
	addr   string
	roller Roller

	// rolls are serialized so two clicks never append at once
	mu sync.Mutex
}

// New creates a Server with its routes registered.
func New(logger *slog.Logger, cfg Config) (*Server, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.Roller == nil {
		return nil, errors.New("roller is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Mode == "" {
		cfg.Mode = gin.ReleaseMode
	}
	gin.SetMode(cfg.Mode)

	srv := &Server{
		gin:    gin.New(),
		logger: logger,
		addr:   cfg.Addr,
		roller: cfg.Roller,
	}
	srv.gin.Use(gin.Recovery(), srv.requestLogger())
	srv.gin.SetHTMLTemplate(template.Must(template.New("page").Parse(pageTemplate)))
	srv.routes()
	return srv, nil
}

func (srv *Server) routes() {
	srv.gin.GET("/", srv.index)
	srv.gin.POST("/roll", srv.rollPage)
	srv.gin.POST("/api/roll", srv.rollJSON)
	srv.gin.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
}

// Handler exposes the routes, mainly for tests.
func (srv *Server) Handler() http.Handler {
	return srv.gin
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (srv *Server) Run(ctx context.Context) error {
	hs := &http.Server{
		Addr:              srv.addr,
		Handler:           srv.gin,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		srv.logger.Info("Listening.", "addr", srv.addr)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.logger.Info("Shutting down.")
		return hs.Shutdown(shutdownCtx)
	}
}

func (srv *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		srv.logger.Debug("Handled request", "method", c.Request.Method, "path", c.Request.URL.Path,
			"status", c.Writer.Status(), "duration", time.Since(start))
	}
}

func (srv *Server) roll(c *gin.Context) roller.Outcome {
	cuisine := c.PostForm("cuisine")
	srv.mu.Lock()
	defer srv.mu.Unlock()
	res, err := srv.roller.Roll(c.Request.Context(), cuisine)
	if err != nil && !errors.Is(err, roller.ErrNoEligiblePlace) {
		srv.logger.Error("Roll failed", "error", err)
	}
	return roller.Classify(res, err)
}

func (srv *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "page", pageData{Cuisines: picker.Cuisines})
}

func (srv *Server) rollPage(c *gin.Context) {
	out := srv.roll(c)
	c.HTML(http.StatusOK, "page", pageData{Cuisines: picker.Cuisines, Outcome: &out})
}

func (srv *Server) rollJSON(c *gin.Context) {
	out := srv.roll(c)
	status := http.StatusOK
	if out.Status == roller.StatusError {
		status = http.StatusBadGateway
	}
	c.JSON(status, toResponse(out))
}
