package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yingtu-pmc/analyzer-go/internal/api"
	"github.com/yingtu-pmc/analyzer-go/internal/cache"
	"github.com/yingtu-pmc/analyzer-go/internal/config"
	"github.com/yingtu-pmc/analyzer-go/internal/engine"
	"github.com/yingtu-pmc/analyzer-go/internal/service"
	"github.com/yingtu-pmc/analyzer-go/internal/storage"
	"github.com/yingtu-pmc/analyzer-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.App.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid analysis configuration")
	}
	eng, err := engine.New(engineCfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to build analysis engine")
	}

	statsCache, err := cache.NewRunStatsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, running without it")
		statsCache = cache.NewNoopRunStatsCache()
	}

	var store storage.ObjectStorage
	if cfg.Storage.Enabled {
		store, err = storage.NewMinioClient(storage.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize object storage")
		}
	}

	// Initialize services
	analysisService := service.NewAnalysisService(eng, statsCache, store)

	// Initialize HTTP server
	router := api.NewRouter(analysisService, api.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		InputDir:       cfg.App.InputDir,
		ReportDir:      cfg.App.ReportDir,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
