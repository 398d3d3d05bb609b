package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/focusflow-app/focusflow/api"
	"github.com/focusflow-app/focusflow/config"
	"github.com/focusflow-app/focusflow/log"
	"github.com/focusflow-app/focusflow/server"
)

const frontendDist = "frontend/dist"

func main() {
	cfg := config.Get()

	srv, err := server.New(server.FromAppConfig(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	// API routes
	api.SetupRoutes(srv.Router(), api.NewHandlers(srv))

	// Static frontend
	setupStaticRoutes(srv.Router())

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
}

// setupStaticRoutes serves the built frontend. Hashed assets are immutable;
// the SPA shell must never be cached so deploys take effect immediately.
func setupStaticRoutes(r *gin.Engine) {
	r.GET("/assets/*filepath", func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=31536000, immutable")
		c.File(filepath.Join(frontendDist, "assets", filepath.Clean(c.Param("filepath"))))
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=86400")
		c.File(filepath.Join(frontendDist, "favicon.ico"))
	})

	r.GET("/robots.txt", func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.String(http.StatusOK, "User-agent: *\nDisallow: /api/\n")
	})

	// SPA fallback for non-API routes
	r.NoRoute(func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.File(filepath.Join(frontendDist, "index.html"))
	})
}
