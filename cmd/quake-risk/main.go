package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-quake-risk/internal/api"
	"github.com/mr1hm/go-quake-risk/internal/auth"
	"github.com/mr1hm/go-quake-risk/internal/config"
	"github.com/mr1hm/go-quake-risk/internal/ingestion"
	"github.com/mr1hm/go-quake-risk/internal/logging"
	"github.com/mr1hm/go-quake-risk/internal/metrics"
	"github.com/mr1hm/go-quake-risk/internal/overlay"
	"github.com/mr1hm/go-quake-risk/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	if cfg.DB.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DB.Path), 0o755); err != nil {
			logging.Fatalf("Failed to create database directory: %v", err)
		}
	}
	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	m := metrics.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The map still works without boundaries, just without the choropleth.
	regionsCtx, regionsCancel := context.WithTimeout(ctx, cfg.Feed.Timeout)
	regions, err := overlay.LoadRegions(regionsCtx, cfg.Regions.Source, nil)
	regionsCancel()
	if err != nil {
		slog.Warn("province boundaries unavailable", "source", cfg.Regions.Source, "error", err)
		regions = overlay.NewRegions(nil)
	} else {
		slog.Info("province boundaries loaded", "count", regions.Len())
	}

	// Start ingestion manager
	feed := ingestion.NewClient(cfg.Feed.URL, cfg.Feed.Timeout)
	mgr := ingestion.NewManager(cfg, feed, db, m)
	mgr.Start(ctx)

	authSvc := auth.NewService(db, cfg.Auth.BcryptCost, m)

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimitRPS))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler := api.NewHandler(mgr, db, authSvc, regions)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	// HTTP first: a manual refresh must not submit to a stopped worker pool.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	cancel()
	mgr.Stop()

	slog.Info("shutdown complete", "at", time.Now().UTC())
}
