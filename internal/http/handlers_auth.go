package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/halcyonlabs/site-gateway/internal/adapters/googleauth"
	domainauth "github.com/halcyonlabs/site-gateway/internal/domain/auth"
	"github.com/halcyonlabs/site-gateway/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	LoginWithCredentials(ctx context.Context, email, password string) (*service.LoginResult, error)
	LoginWithGoogle(ctx context.Context, rawIDToken string) (*service.LoginResult, error)
	LoginWithAssertion(ctx context.Context, assertion domainauth.Assertion) (*service.LoginResult, error)
}

// LogoutNotifier tells the upstream a session ended. Best-effort: logout
// succeeds locally even when notification fails.
type LogoutNotifier interface {
	NotifyLogout(ctx context.Context, cookie string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc     AuthServiceInterface
	Cookies CookieWriter
	// Google enables the server-side code flow; nil disables those routes.
	Google   *googleauth.Provider
	Notifier LogoutNotifier
	Logger   *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// loginRequest is the credential sign-in body.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// googleLoginRequest is the OAuth popup sign-in body.
type googleLoginRequest struct {
	IDToken string `json:"idToken"`
}

// Login handles the credential sign-in endpoint.
// POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.LoginWithCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.completeSignIn(w, result)
}

// GoogleLogin handles the OAuth popup sign-in endpoint. The popup has
// already obtained an ID token from the provider; the gateway verifies it and
// converges on the same session mint as the credential path.
// POST /api/auth/google.
func (h *AuthHandlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.LoginWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.completeSignIn(w, result)
}

// completeSignIn sets the session cookie and returns the sign-in payload.
// The raw token is never part of the response body.
func (h *AuthHandlers) completeSignIn(w http.ResponseWriter, result *service.LoginResult) {
	h.Cookies.WriteSession(w, result.Token)
	WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    result.User,
	})
}

// GoogleBegin starts the server-side code flow for browsers that block the
// sign-in popup.
// GET /auth/google.
func (h *AuthHandlers) GoogleBegin(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("google sign-in is not configured"),
		})
		return
	}

	result, err := h.Google.Begin(r.Context())
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin google sign-in failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("could not start sign-in"),
		})
		return
	}

	h.Cookies.setFlowCookie(w, "oauth_state", result.State)
	h.Cookies.setFlowCookie(w, "oauth_nonce", result.Nonce)
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// GoogleCallback completes the code flow: verifies state, exchanges the code,
// and converges on the same session mint as the other sign-in paths.
// GET /auth/google/callback?code=<code>&state=<state>.
func (h *AuthHandlers) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil {
		http.NotFound(w, r)
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("code and state parameters are required"),
		})
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonce := ""
	if nonceCookie, cookieErr := r.Cookie("oauth_nonce"); cookieErr == nil {
		nonce = nonceCookie.Value
	}

	assertion, err := h.Google.Exchange(r.Context(), googleauth.ExchangeInput{Code: code, Nonce: nonce})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	result, err := h.Svc.LoginWithAssertion(r.Context(), assertion)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.Cookies.WriteSession(w, result.Token)
	h.Cookies.clearFlowCookie(w, "oauth_state")
	h.Cookies.clearFlowCookie(w, "oauth_nonce")
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout handles the logout endpoint. Clearing the cookie is the last,
// unconditional step: it happens even when the upstream notification fails.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if h.Notifier != nil {
		if cookie := r.Header.Get("Cookie"); cookie != "" {
			if err := h.Notifier.NotifyLogout(r.Context(), cookie); err != nil {
				h.logger().WarnContext(r.Context(), "logout notification failed", "error", err)
			}
		}
	}

	h.Cookies.ClearSession(w)
	WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Profile returns the authenticated principal.
// GET /api/auth/profile (behind RequireAuth).
func (h *AuthHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromRequest(r)
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    principal,
	})
}

// ResetRequest is the password reset stub. The reset flow is owned by the
// upstream; the gateway only acknowledges that it is not implemented here.
// POST /api/auth/reset-request.
func (h *AuthHandlers) ResetRequest(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, ErrorParams{
		Code:    http.StatusNotImplemented,
		ErrCode: "not_implemented",
		Err:     errors.New("password reset is handled by the account backend"),
	})
}
