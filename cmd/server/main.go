// Package main is the entry point for the risk monitor service.
// Each request to / (or each scheduled tick, when configured) evaluates the
// portfolio against recent market data and stores one risk record per position.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/riskmonitor/internal/config"
	"github.com/aristath/riskmonitor/internal/di"
	"github.com/aristath/riskmonitor/internal/server"
	"github.com/aristath/riskmonitor/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})

	log.Info().
		Str("sink", cfg.Sink).
		Str("portfolio", cfg.PortfolioPath).
		Msg("Starting risk monitor")

	// Cancelled on shutdown; aborts scheduled runs waiting on retries
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.Wire(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close sink")
		}
	}()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	if container.Scheduler != nil {
		container.Scheduler.Start()
	}

	log.Info().Int("port", cfg.Port).Msg("Risk monitor started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down risk monitor...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if container.Scheduler != nil {
		container.Scheduler.StopContext(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Risk monitor stopped")
}
