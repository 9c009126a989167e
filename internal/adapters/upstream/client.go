package upstream

// Package upstream implements the HTTP client for the backend API that owns
// business data and, for credential logins, the password check itself. The
// backend is opaque: the gateway talks to it over a base URL and relays the
// session cookie verbatim as the trust credential.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/halcyonlabs/site-gateway/internal/domain/auth"
	apperrors "github.com/halcyonlabs/site-gateway/internal/errors"
	"github.com/halcyonlabs/site-gateway/internal/ports"
)

const defaultTimeout = 15 * time.Second

// Config holds construction parameters for the Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client // optional, mainly for tests
}

// Client calls the upstream backend API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// Compile-time conformance to the auth ports.
var (
	_ ports.CredentialVerifier = (*Client)(nil)
	_ ports.IdentityLinker     = (*Client)(nil)
)

// NewClient constructs a Client for the given base URL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("upstream base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("upstream base URL %q must be absolute", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{baseURL: base, http: httpClient}, nil
}

// Origin returns the scheme://host portion of the upstream base URL.
func (c *Client) Origin() string {
	return c.baseURL.Scheme + "://" + c.baseURL.Host
}

// authResponse is the upstream payload shape for both sign-in endpoints.
type authResponse struct {
	Success bool                `json:"success"`
	User    domainauth.Identity `json:"user"`
	Message string              `json:"message,omitempty"`
}

// VerifyCredentials forwards email and password to the upstream credential
// check and returns the authenticated identity on success.
func (c *Client) VerifyCredentials(ctx context.Context, email, password string) (domainauth.Identity, error) {
	body := map[string]string{"email": email, "password": password}

	resp, err := c.postJSON(ctx, "/auth/login", body)
	if err != nil {
		return domainauth.Identity{}, err
	}
	defer closeBody(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domainauth.Identity{}, apperrors.Unauthenticated("invalid email or password")
	case resp.StatusCode >= 500:
		return domainauth.Identity{}, apperrors.UpstreamUnavailable(fmt.Sprintf("backend returned %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return domainauth.Identity{}, apperrors.Internalf("unexpected backend status %d", resp.StatusCode)
	}

	return decodeIdentity(resp.Body)
}

// LinkIdentity forwards a verified external identity for account linking or
// creation and returns the linked account.
func (c *Client) LinkIdentity(ctx context.Context, in ports.LinkInput) (domainauth.Identity, error) {
	body := map[string]string{
		"provider":  in.Provider,
		"subject":   in.Subject,
		"email":     in.Email,
		"firstName": in.FirstName,
		"lastName":  in.LastName,
	}

	resp, err := c.postJSON(ctx, "/auth/oauth", body)
	if err != nil {
		return domainauth.Identity{}, err
	}
	defer closeBody(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domainauth.Identity{}, apperrors.Unauthenticated("account link rejected")
	case resp.StatusCode >= 500:
		return domainauth.Identity{}, apperrors.UpstreamUnavailable(fmt.Sprintf("backend returned %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return domainauth.Identity{}, apperrors.Internalf("unexpected backend status %d", resp.StatusCode)
	}

	return decodeIdentity(resp.Body)
}

// NotifyLogout tells the upstream a session ended, relaying the inbound
// cookie so it can clean up anything it tracks. Best-effort by contract.
func (c *Client) NotifyLogout(ctx context.Context, cookie string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve("/auth/logout"), nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "build upstream request")
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	defer closeBody(resp)

	if resp.StatusCode >= 500 {
		return apperrors.UpstreamUnavailable(fmt.Sprintf("backend returned %d", resp.StatusCode))
	}
	return nil
}

// ForwardInput groups parameters for a proxied upstream call.
type ForwardInput struct {
	Method string
	Path   string // upstream path, already stripped of the gateway prefix
	Query  string // raw query string, passed through unchanged
	Body   io.Reader
	// Cookie is the inbound Cookie header, relayed byte-for-byte so the
	// upstream can independently validate the session if it chooses.
	Cookie      string
	ContentType string
}

// ForwardResult carries the upstream response back to the proxy handler.
type ForwardResult struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// maxRelayBody bounds how much of an upstream response the gateway buffers.
const maxRelayBody = 10 << 20

// Forward performs one proxied call. A non-2xx upstream status is returned in
// the result, not as an error; only transport failures produce errors.
func (c *Client) Forward(ctx context.Context, in ForwardInput) (*ForwardResult, error) {
	target := c.resolve(in.Path)
	if in.Query != "" {
		target = target + "?" + in.Query
	}

	req, err := http.NewRequestWithContext(ctx, in.Method, target, in.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build upstream request")
	}
	if in.ContentType != "" {
		req.Header.Set("Content-Type", in.ContentType)
	}
	if in.Cookie != "" {
		req.Header.Set("Cookie", in.Cookie)
	}
	// Every proxied call is treated as non-idempotent-sensitive.
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer closeBody(resp)

	// Read one byte past the limit so an oversized body is detected instead
	// of being truncated and relayed as if it were complete.
	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxRelayBody+1))
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	if len(payload) > maxRelayBody {
		return nil, apperrors.UpstreamUnavailable("backend response exceeds relay limit")
	}

	return &ForwardResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        payload,
	}, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode upstream request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path), bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build upstream request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	return resp, nil
}

func (c *Client) resolve(path string) string {
	base := strings.TrimSuffix(c.baseURL.String(), "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func decodeIdentity(r io.Reader) (domainauth.Identity, error) {
	var parsed authResponse
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeUpstreamUnavailable, "decode backend response")
	}
	if !parsed.Success || parsed.User.ID == "" {
		return domainauth.Identity{}, apperrors.Unauthenticated("invalid email or password")
	}
	if !parsed.User.Role.Valid() {
		parsed.User.Role = domainauth.RoleUser
	}
	return parsed.User, nil
}

// classifyTransportError maps transport faults to the error taxonomy. Client
// disconnects surface as the context error so callers can tell an aborted
// request from a backend outage.
func classifyTransportError(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
		return apperrors.Wrap(ctx.Err(), apperrors.ErrCodeInternal, "request canceled")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeUpstreamUnavailable, "backend unreachable")
}

func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()
}
