package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"alcyxob/workout-tracker/internal/api"
	"alcyxob/workout-tracker/internal/app"
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/logger"
)

// @title Workout Tracker API
// @version 1.0
// @description API for importing workout spreadsheets and tracking sets, notes and rest timers.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: could not load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: could not init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Starting Workout Tracker Server...", "driver", cfg.Database.Driver, "s3_enabled", cfg.S3.Enabled)

	// --- Stores, Storage and Services ---
	ctx := context.Background()
	application, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("could not build application", "error", err)
	}

	// --- Initialize Gin Engine ---
	if cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// --- Setup Routes ---
	api.SetupRoutes(router, log, application.Imports, application.Workouts, application.Sessions, cfg.Import.MaxFileSize)
	// Room for multipart framing around the largest accepted file.
	router.MaxMultipartMemory = cfg.Import.MaxFileSize + 1<<20

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe failed", "error", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	// Pending progress writes are flushed before the store disconnects.
	if err := application.Close(ctxShutdown); err != nil {
		log.Error("Shutdown incomplete", "error", err)
	}

	log.Info("Server exiting.")
}
