package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/halcyonlabs/site-gateway/config"
	"github.com/halcyonlabs/site-gateway/internal/adapters/upstream"
	httpx "github.com/halcyonlabs/site-gateway/internal/http"
	"github.com/halcyonlabs/site-gateway/internal/observability/metrics"
)

const shutdownTimeout = 10 * time.Second

// HTTPServerDeps contains everything needed to assemble the HTTP server.
type HTTPServerDeps struct {
	Config   *config.AppConfig
	Auth     *AuthComponents
	Upstream *upstream.Client
	Metrics  *metrics.Collectors
	Logger   *slog.Logger
}

// BuildHandler assembles the router and middleware chain.
// Order: Recover -> Logging -> Metrics -> Router.
func BuildHandler(deps HTTPServerDeps) http.Handler {
	cfg := deps.Config

	perSecond := rate.Limit(float64(cfg.HTTP.LoginRatePerMinute) / 60.0)

	services := httpx.RouterServices{
		Auth:     deps.Auth.Service,
		Codec:    deps.Auth.Codec,
		Upstream: deps.Upstream,
		Cookies: httpx.CookieWriter{
			Domain: cfg.HTTP.CookieDomain,
			Secure: cfg.HTTP.SecureCookies(cfg.IsDev),
		},
		CORS:               httpx.CORS{Origin: cfg.HTTP.AllowedOrigin},
		Google:             deps.Auth.Google,
		LoginRatePerSecond: perSecond,
		LoginBurst:         cfg.HTTP.LoginBurst,
		Logger:             deps.Logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/", httpx.NewRouter(services))
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	var h http.Handler = mux
	if deps.Metrics != nil {
		h = deps.Metrics.Instrument(h)
	}
	h = httpx.Logging(deps.Logger)(h)
	h = httpx.Recover(deps.Logger)(h)
	return h
}

// RunServer starts the HTTP server and blocks until the context is canceled
// or the listener fails, then shuts down gracefully.
func RunServer(ctx context.Context, deps HTTPServerDeps) error {
	addr := deps.Config.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      BuildHandler(deps),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		deps.Logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	deps.Logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
