package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"album-bot/config"
	"album-bot/internal/bot"
	"album-bot/internal/handler"
	"album-bot/internal/provider/chapa"
	"album-bot/internal/router"
	"album-bot/internal/usecase"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const deliveryQueueSize = 64

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("starting album bot")

	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Connect to Telegram
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal("failed to create telegram client", zap.Error(err))
	}
	logger.Info("authorized on telegram", zap.String("username", api.Self.UserName))

	// Initialize provider
	chapaProvider := chapa.NewProvider(cfg.Chapa)

	// Initialize usecases
	returnURL := "https://t.me/" + api.Self.UserName
	purchaseUC := usecase.NewPurchaseUsecase(chapaProvider, cfg, returnURL, logger)
	deliveryUC := usecase.NewDeliveryUsecase(api, cfg.Telegram.ChannelID, logger)

	// Conversation dispatcher owns all Telegram I/O
	machine := bot.NewMachine(api, purchaseUC, cfg.Product, logger)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := api.GetUpdatesChan(updateConfig)

	dispatcher := bot.NewDispatcher(machine, deliveryUC, updates, deliveryQueueSize, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The dispatcher must be running before the listener accepts callbacks.
	go dispatcher.Run(ctx)

	// Callback listener
	webhookHandler := handler.NewWebhookHandler(chapaProvider, dispatcher, logger)
	r := router.SetupRoutes(webhookHandler, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("listener starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start listener", zap.Error(err))
		}
	}()

	logger.Info("album bot started successfully", zap.String("port", cfg.Server.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	api.StopReceivingUpdates()
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("listener forced to shutdown", zap.Error(err))
	}

	logger.Info("stopped")
}
