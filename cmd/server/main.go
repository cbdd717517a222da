package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unit-roster/internal/api"
	"unit-roster/internal/config"
	"unit-roster/internal/repository"
	"unit-roster/internal/service"
	"unit-roster/internal/storage"
)

func main() {
	cfg := config.GetConfig()
	logger := cfg.NewLogger()

	store, err := storage.Open(cfg.StoreDriver, cfg.StoreDSN(), logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}

	repo, err := repository.Open(context.Background(), store, repository.WithLogger(logger))
	if err != nil {
		store.Close()
		logger.WithError(err).Fatal("Failed to load roster")
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.WithError(err).Error("Error closing store")
		}
	}()

	reports := service.NewReportService(repo, service.WithReportLogger(logger))
	h := api.NewHandler(repo, reports, logger, cfg.RecentLeavesLimit)
	router := api.NewRouter(h, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on http://localhost:%d", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}
