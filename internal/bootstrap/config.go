package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/halcyonlabs/site-gateway/config"
	apperrors "github.com/halcyonlabs/site-gateway/internal/errors"
)

// InitLogger creates the process logger. JSON in production, text in dev.
func InitLogger() *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	if os.Getenv("DEV") == "true" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()

	if err := validate(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// validate rejects configurations the gateway cannot safely run with. A
// missing signing secret would turn every token verification into a 500, so
// it is refused loudly at startup instead.
func validate(cfg *config.AppConfig) error {
	if cfg.Session.Secret == "" {
		return apperrors.Configuration("SESSION_SECRET is required")
	}
	if cfg.Upstream.BaseURL == "" {
		return apperrors.Configuration("UPSTREAM_BASE_URL must not be empty")
	}
	return nil
}
