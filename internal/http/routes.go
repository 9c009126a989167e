package httpx

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/halcyonlabs/site-gateway/internal/adapters/googleauth"
	"github.com/halcyonlabs/site-gateway/internal/adapters/upstream"
	domainauth "github.com/halcyonlabs/site-gateway/internal/domain/auth"
	"github.com/halcyonlabs/site-gateway/internal/ports"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth     AuthServiceInterface
	Codec    ports.TokenCodec
	Upstream *upstream.Client
	Cookies  CookieWriter
	CORS     CORS

	// Optional: server-side Google code flow. Nil disables those routes.
	Google *googleauth.Provider

	// Login rate limiting (per client IP).
	LoginRatePerSecond rate.Limit
	LoginBurst         int

	Logger *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	var notifier LogoutNotifier
	if services.Upstream != nil {
		notifier = services.Upstream
	}
	authHandlers := &AuthHandlers{
		Svc:      services.Auth,
		Cookies:  services.Cookies,
		Google:   services.Google,
		Notifier: notifier,
		Logger:   services.Logger,
	}
	proxyHandlers := &ProxyHandlers{
		Upstream: services.Upstream,
		CORS:     services.CORS,
		Logger:   services.Logger,
	}

	registerAuthRoutes(mux, authHandlers, services)
	registerUserRoutes(mux, proxyHandlers, services)
	registerBusinessRoutes(mux, proxyHandlers, services)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return mux
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withCORS decorates every response from h with the cross-origin headers.
// Always the outermost wrapper on cross-origin routes so that auth and
// rate-limit rejections stay readable to browser callers.
func withCORS(c CORS, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.Decorate(w)
		h.ServeHTTP(w, r)
	})
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, services RouterServices) {
	cors := services.CORS
	limit := RateLimit(services.LoginRatePerSecond, services.LoginBurst)
	requireAuth := RequireAuth(services.Codec)

	mux.Handle("POST /api/auth/login", withCORS(cors, limit(http.HandlerFunc(h.Login))))
	mux.Handle("POST /api/auth/google", withCORS(cors, limit(http.HandlerFunc(h.GoogleLogin))))
	mux.Handle("POST /api/auth/logout", withCORS(cors, http.HandlerFunc(h.Logout)))
	mux.Handle("GET /api/auth/profile", withCORS(cors, requireAuth(http.HandlerFunc(h.Profile))))
	mux.Handle("POST /api/auth/reset-request", withCORS(cors, http.HandlerFunc(h.ResetRequest)))

	mux.Handle("OPTIONS /api/auth/login", cors.Preflight("POST, OPTIONS"))
	mux.Handle("OPTIONS /api/auth/google", cors.Preflight("POST, OPTIONS"))
	mux.Handle("OPTIONS /api/auth/logout", cors.Preflight("POST, OPTIONS"))
	mux.Handle("OPTIONS /api/auth/profile", cors.Preflight("GET, OPTIONS"))
	mux.Handle("OPTIONS /api/auth/reset-request", cors.Preflight("POST, OPTIONS"))

	// Server-side code flow lives outside /api: the browser navigates here.
	if h.Google != nil {
		mux.Handle("GET /auth/google", http.HandlerFunc(h.GoogleBegin))
		mux.Handle("GET /auth/google/callback", http.HandlerFunc(h.GoogleCallback))
	}
}

// registerUserRoutes wires the user resource. Reads and profile updates need
// a session; deleting a user and listing users by role are admin-gated.
func registerUserRoutes(mux *http.ServeMux, p *ProxyHandlers, services RouterServices) {
	cors := services.CORS
	requireAuth := RequireAuth(services.Codec)
	adminOnly := RequireRole(services.Codec, domainauth.RoleAdmin)
	relay := p.Relay()

	mux.Handle("GET /api/users", withCORS(cors, adminOnly(relay)))
	mux.Handle("GET /api/users/{id}", withCORS(cors, requireAuth(relay)))
	mux.Handle("PUT /api/users/{id}", withCORS(cors, requireAuth(relay)))
	mux.Handle("DELETE /api/users/{id}", withCORS(cors, adminOnly(relay)))

	mux.Handle("OPTIONS /api/users", services.CORS.Preflight("GET, OPTIONS"))
	mux.Handle("OPTIONS /api/users/{id}", services.CORS.Preflight("GET, PUT, DELETE, OPTIONS"))
}

// businessResources are the upstream collections the dashboard manages.
// Reads need a session; writes are admin-gated.
var businessResources = []string{"products", "orders", "projects", "team"}

func registerBusinessRoutes(mux *http.ServeMux, p *ProxyHandlers, services RouterServices) {
	cors := services.CORS
	requireAuth := RequireAuth(services.Codec)
	adminOnly := RequireRole(services.Codec, domainauth.RoleAdmin)
	relay := p.Relay()

	for _, res := range businessResources {
		base := "/api/" + res

		mux.Handle("GET "+base, withCORS(cors, requireAuth(relay)))
		mux.Handle("GET "+base+"/{id}", withCORS(cors, requireAuth(relay)))
		mux.Handle("POST "+base, withCORS(cors, adminOnly(relay)))
		mux.Handle("PUT "+base+"/{id}", withCORS(cors, adminOnly(relay)))
		mux.Handle("DELETE "+base+"/{id}", withCORS(cors, adminOnly(relay)))

		mux.Handle("OPTIONS "+base, services.CORS.Preflight("GET, POST, OPTIONS"))
		mux.Handle("OPTIONS "+base+"/{id}", services.CORS.Preflight("GET, PUT, DELETE, OPTIONS"))
	}
}
