package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/halcyonlabs/site-gateway/internal/adapters/upstream"
	"github.com/halcyonlabs/site-gateway/internal/bootstrap"
	"github.com/halcyonlabs/site-gateway/internal/observability/metrics"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting site gateway",
		"addr", cfg.HTTP.Addr,
		"upstream", cfg.Upstream.BaseURL,
		"allowed_origin", cfg.HTTP.AllowedOrigin,
		"google_sign_in", cfg.Google.Enabled(),
		"dev", cfg.IsDev,
	)

	upstreamClient, err := upstream.NewClient(upstream.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
	})
	if err != nil {
		return fmt.Errorf("build upstream client: %w", err)
	}

	auth, err := bootstrap.BuildAuth(ctx, bootstrap.AuthDeps{
		Config:   &cfg,
		Upstream: upstreamClient,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.RunServer(ctx, bootstrap.HTTPServerDeps{
		Config:   &cfg,
		Auth:     auth,
		Upstream: upstreamClient,
		Metrics:  metrics.New(),
		Logger:   logger,
	})
}
