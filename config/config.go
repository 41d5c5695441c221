package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// WebhookPath is the fixed path the payment gateway posts callbacks to.
// The purchase flow embeds it in every outbound payment request, and the
// router binds the callback receiver to it.
const WebhookPath = "/chapa_webhook"

type Config struct {
	Server   ServerConfig
	Telegram TelegramConfig
	Chapa    ChapaConfig
	Product  ProductConfig
}

type ServerConfig struct {
	Port string
	// PublicBaseURL is the externally reachable base URL of this process,
	// used to build the gateway callback address.
	PublicBaseURL string
}

type TelegramConfig struct {
	Token string
	// ChannelID is the restricted channel buyers are invited to.
	ChannelID int64
}

type ChapaConfig struct {
	SecretKey string
	BaseURL   string
}

type ProductConfig struct {
	Price       string
	Currency    string
	Tag         string
	Title       string
	Description string
}

// Load reads configuration from the environment. Required values that are
// missing or unparseable make Load fail; the process must not start without
// them.
func Load(logger *zap.Logger) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "8080"),
			PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		},
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_TOKEN"),
		},
		Chapa: ChapaConfig{
			SecretKey: os.Getenv("CHAPA_SECRET_KEY"),
			BaseURL:   getEnv("CHAPA_BASE_URL", "https://api.chapa.co"),
		},
		Product: ProductConfig{
			Price:       getEnv("ALBUM_PRICE", "100"),
			Currency:    getEnv("ALBUM_CURRENCY", "ETB"),
			Tag:         "album",
			Title:       getEnv("ALBUM_TITLE", "Ldeta Mariam Vol. 4 Album"),
			Description: getEnv("ALBUM_DESCRIPTION", "Payment for the new album"),
		},
	}

	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if cfg.Chapa.SecretKey == "" {
		return nil, fmt.Errorf("CHAPA_SECRET_KEY is required")
	}
	if cfg.Server.PublicBaseURL == "" {
		return nil, fmt.Errorf("PUBLIC_BASE_URL is required")
	}

	channelIDStr := os.Getenv("PRIVATE_CHANNEL_ID")
	if channelIDStr == "" {
		return nil, fmt.Errorf("PRIVATE_CHANNEL_ID is required")
	}
	channelID, err := strconv.ParseInt(channelIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("PRIVATE_CHANNEL_ID must be a numeric chat id: %w", err)
	}
	cfg.Telegram.ChannelID = channelID

	price, err := strconv.ParseFloat(cfg.Product.Price, 64)
	if err != nil || price <= 0 {
		return nil, fmt.Errorf("ALBUM_PRICE must be a positive number, got %q", cfg.Product.Price)
	}

	logger.Info("configuration loaded",
		zap.String("port", cfg.Server.Port),
		zap.String("public_base_url", cfg.Server.PublicBaseURL),
		zap.Int64("channel_id", cfg.Telegram.ChannelID),
		zap.String("price", cfg.Product.Price),
		zap.String("currency", cfg.Product.Currency))

	return cfg, nil
}

// WebhookURL returns the externally reachable callback address handed to the
// payment gateway.
func (s ServerConfig) WebhookURL() string {
	return s.PublicBaseURL + WebhookPath
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
