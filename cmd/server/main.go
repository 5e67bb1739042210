// Package main is the entry point for the QLab quantum workflow service.
// It exposes the ground-state and period-finding pipelines over HTTP, runs
// them against a local statevector backend, and persists every run.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pedrorrivero/qlab/internal/config"
	"github.com/pedrorrivero/qlab/internal/di"
	"github.com/pedrorrivero/qlab/internal/events"
	"github.com/pedrorrivero/qlab/internal/modules/cleanup"
	"github.com/pedrorrivero/qlab/internal/scheduler"
	"github.com/pedrorrivero/qlab/internal/server"
	"github.com/pedrorrivero/qlab/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:   "info",
			Pretty:  true,
			Service: "qlab",
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Pretty:  cfg.DevMode,
		Service: "qlab",
	})

	log.Info().Msg("Starting QLab")

	// Wire all dependencies using the DI container
	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing container")
		}
	}()

	// Background jobs
	sched := scheduler.New(log)
	cleanupJob := cleanup.NewRunsCleanupJob(container.RunRepo, container.RunsDB, container.EventBus, cfg.RetentionDays, log)
	if err := sched.AddJob("0 0 3 * * *", cleanupJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cleanup job")
	}
	sched.Start()

	container.EventBus.EmitTyped(events.SystemStatusChanged, "main", &events.SystemStatusChangedData{
		Status:    "started",
		Timestamp: time.Now().Format(time.RFC3339),
	})

	// HTTP server
	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	container.EventBus.EmitTyped(events.SystemStatusChanged, "main", &events.SystemStatusChangedData{
		Status:    "stopping",
		Timestamp: time.Now().Format(time.RFC3339),
	})

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
