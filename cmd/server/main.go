// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinvita/clinstock/internal/api"
	"github.com/clinvita/clinstock/internal/cache"
	"github.com/clinvita/clinstock/internal/config"
	"github.com/clinvita/clinstock/internal/repository/postgres"
	"github.com/clinvita/clinstock/internal/service"
	"github.com/clinvita/clinstock/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(context.Background(), db); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize cache
	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Report cache unavailable, continuing without it")
		reportCache = cache.NewNoopReportCache()
	}

	// Initialize repositories and services
	catalogRepo := postgres.NewCatalogRepository(db)
	movementRepo := postgres.NewMovementRepository(db)
	lotRepo := postgres.NewLotRepository(db)
	demandRepo := postgres.NewDemandRepository(db)
	paramsRepo := postgres.NewParamsRepository(db)

	verifyService := service.NewVerifyService(catalogRepo, movementRepo, lotRepo, demandRepo, paramsRepo, reportCache, cfg.Replenish)
	reportService := service.NewReportService(verifyService, lotRepo, demandRepo)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		Verify:  verifyService,
		Reports: reportService,
	}, cfg.Server.AllowedOrigins)

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
