package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"unit-roster/internal/config"
	"unit-roster/internal/handler"
	"unit-roster/internal/repository"
	"unit-roster/internal/service"
	"unit-roster/internal/storage"
	"unit-roster/pkg/telegram"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetConfig()
	logger := cfg.NewLogger()
	logger.Info("Config initialized...")

	if cfg.TelegramToken == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.StoreDriver, cfg.StoreDSN(), logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}

	repo, err := repository.Open(ctx, store, repository.WithLogger(logger))
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

	client, err := telegram.NewClient(cfg.TelegramToken, cfg.LogLevel >= logrus.DebugLevel)
	if err != nil {
		logger.WithError(err).Error("Failed to create Telegram client")
		return
	}
	logger.Infof("Authorized on account %s", client.Bot.Self.UserName)

	botHandler := handler.NewHandler(client.Bot, repo, reports, logger, cfg.RecentLeavesLimit)

	updates := client.Updates()
	done := make(chan struct{})
	go func() {
		defer close(done)
		botHandler.HandleUpdates(ctx, updates)
	}()

	logger.Info("Bot started. Press Ctrl+C to stop.")
	<-ctx.Done()

	client.Stop()
	<-done

	logger.Info("Bot stopped gracefully")
}
