package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/halcyonlabs/site-gateway/internal/domain/auth"
	apperrors "github.com/halcyonlabs/site-gateway/internal/errors"
	"github.com/halcyonlabs/site-gateway/internal/service"
)

type fakeAuthService struct {
	LoginWithCredentialsFunc func(ctx context.Context, email, password string) (*service.LoginResult, error)
	LoginWithGoogleFunc      func(ctx context.Context, rawIDToken string) (*service.LoginResult, error)
	LoginWithAssertionFunc   func(ctx context.Context, assertion domainauth.Assertion) (*service.LoginResult, error)
}

func (f *fakeAuthService) LoginWithCredentials(ctx context.Context, email, password string) (*service.LoginResult, error) {
	return f.LoginWithCredentialsFunc(ctx, email, password)
}

func (f *fakeAuthService) LoginWithGoogle(ctx context.Context, rawIDToken string) (*service.LoginResult, error) {
	return f.LoginWithGoogleFunc(ctx, rawIDToken)
}

func (f *fakeAuthService) LoginWithAssertion(ctx context.Context, assertion domainauth.Assertion) (*service.LoginResult, error) {
	return f.LoginWithAssertionFunc(ctx, assertion)
}

type fakeNotifier struct {
	cookies []string
	err     error
}

func (f *fakeNotifier) NotifyLogout(_ context.Context, cookie string) error {
	f.cookies = append(f.cookies, cookie)
	return f.err
}

func adminResult() *service.LoginResult {
	return &service.LoginResult{
		Token: "signed-session-token",
		User: domainauth.Identity{
			ID:        "1",
			FirstName: "Ada",
			LastName:  "Byron",
			Email:     "a@b.com",
			Role:      domainauth.RoleAdmin,
		},
	}
}

func newAuthHandlers(svc AuthServiceInterface) *AuthHandlers {
	return &AuthHandlers{
		Svc:     svc,
		Cookies: CookieWriter{Secure: true},
	}
}

func TestLogin(t *testing.T) {
	svc := &fakeAuthService{
		LoginWithCredentialsFunc: func(_ context.Context, email, password string) (*service.LoginResult, error) {
			assert.Equal(t, "a@b.com", email)
			assert.Equal(t, "secret", password)
			return adminResult(), nil
		},
	}
	h := newAuthHandlers(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"a@b.com","password":"secret"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(t, rec)
	assert.Equal(t, "signed-session-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)

	var body struct {
		Success bool                `json:"success"`
		User    domainauth.Identity `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "1", body.User.ID)
	assert.Equal(t, domainauth.RoleAdmin, body.User.Role)

	// The raw token must never appear in the body.
	assert.NotContains(t, rec.Body.String(), "signed-session-token")
}

func TestLogin_Rejected(t *testing.T) {
	svc := &fakeAuthService{
		LoginWithCredentialsFunc: func(context.Context, string, string) (*service.LoginResult, error) {
			return nil, apperrors.Unauthenticated("invalid email or password")
		},
	}
	h := newAuthHandlers(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"a@b.com","password":"wrong"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogin_MissingFields(t *testing.T) {
	svc := &fakeAuthService{
		LoginWithCredentialsFunc: func(context.Context, string, string) (*service.LoginResult, error) {
			return nil, apperrors.ValidationField("email", "email is required")
		},
	}
	h := newAuthHandlers(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"password":"secret"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_BadJSON(t *testing.T) {
	h := newAuthHandlers(&fakeAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", errCodeOf(t, rec))
}

func TestGoogleLogin(t *testing.T) {
	svc := &fakeAuthService{
		LoginWithGoogleFunc: func(_ context.Context, rawIDToken string) (*service.LoginResult, error) {
			assert.Equal(t, "google-id-token", rawIDToken)
			return adminResult(), nil
		},
	}
	h := newAuthHandlers(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/google",
		strings.NewReader(`{"idToken":"google-id-token"}`))
	rec := httptest.NewRecorder()

	h.GoogleLogin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// Both sign-in channels converge on the same cookie shape.
	cookie := sessionCookie(t, rec)
	assert.Equal(t, "signed-session-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestGoogleLogin_InvalidAssertion(t *testing.T) {
	svc := &fakeAuthService{
		LoginWithGoogleFunc: func(context.Context, string) (*service.LoginResult, error) {
			return nil, apperrors.Unauthenticated("invalid google token")
		},
	}
	h := newAuthHandlers(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/google",
		strings.NewReader(`{"idToken":"bogus"}`))
	rec := httptest.NewRecorder()

	h.GoogleLogin(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogout(t *testing.T) {
	notifier := &fakeNotifier{}
	h := newAuthHandlers(&fakeAuthService{})
	h.Notifier = notifier

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "signed-session-token"})
	rec := httptest.NewRecorder()

	h.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, notifier.cookies, 1)
	assert.Contains(t, notifier.cookies[0], SessionCookieName+"=signed-session-token")

	cookie := sessionCookie(t, rec)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.MaxAge < 0)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
}

func TestLogout_ClearsCookieEvenWhenNotificationFails(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("upstream down")}
	h := newAuthHandlers(&fakeAuthService{})
	h.Notifier = notifier

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "signed-session-token"})
	rec := httptest.NewRecorder()

	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)
	assert.Empty(t, cookie.Value)
}

func TestLogout_NoCookie(t *testing.T) {
	notifier := &fakeNotifier{}
	h := newAuthHandlers(&fakeAuthService{})
	h.Notifier = notifier

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()

	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, notifier.cookies)
	cookie := sessionCookie(t, rec)
	assert.Empty(t, cookie.Value)
}

func TestProfile(t *testing.T) {
	h := newAuthHandlers(&fakeAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	ctx := SetPrincipalInContext(req.Context(), domainauth.Principal{
		ID: "1", Email: "a@b.com", Role: domainauth.RoleAdmin,
	})
	rec := httptest.NewRecorder()

	h.Profile(rec, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		User    struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "1", body.User.ID)
	assert.Equal(t, "admin", body.User.Role)
}

func TestProfile_NoPrincipal(t *testing.T) {
	h := newAuthHandlers(&fakeAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	rec := httptest.NewRecorder()

	h.Profile(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResetRequest(t *testing.T) {
	h := newAuthHandlers(&fakeAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/reset-request",
		strings.NewReader(`{"email":"a@b.com"}`))
	rec := httptest.NewRecorder()

	h.ResetRequest(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, "not_implemented", errCodeOf(t, rec))
}
