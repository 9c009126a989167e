package httpx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/halcyonlabs/site-gateway/internal/adapters/upstream"
	apperrors "github.com/halcyonlabs/site-gateway/internal/errors"
)

// gatewayPrefix is stripped from inbound paths before forwarding upstream.
const gatewayPrefix = "/api"

// ProxyHandlers forwards authorized requests to the upstream API. The
// inbound cookie header travels with the call byte-for-byte; the upstream can
// independently validate the session if it chooses.
type ProxyHandlers struct {
	Upstream *upstream.Client
	CORS     CORS
	Logger   *slog.Logger
}

func (p *ProxyHandlers) logger() *slog.Logger {
	if p != nil && p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Relay returns a handler that forwards the request to the upstream path
// derived from the inbound path and relays the response.
func (p *ProxyHandlers) Relay() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.forward(w, r, strings.TrimPrefix(r.URL.Path, gatewayPrefix))
	}
}

func (p *ProxyHandlers) forward(w http.ResponseWriter, r *http.Request, upstreamPath string) {
	// CORS headers are attached after any outcome, including failures.
	p.CORS.Decorate(w)

	result, err := p.Upstream.Forward(r.Context(), upstream.ForwardInput{
		Method:      r.Method,
		Path:        upstreamPath,
		Query:       r.URL.RawQuery,
		Body:        r.Body,
		Cookie:      r.Header.Get("Cookie"),
		ContentType: r.Header.Get("Content-Type"),
	})
	if err != nil {
		p.writeTransportFailure(w, r, err)
		return
	}

	if result.StatusCode < 200 || result.StatusCode >= 300 {
		// Surface the upstream status with a generic message; the raw
		// upstream body never reaches the caller.
		WriteError(w, ErrorParams{
			Code:    result.StatusCode,
			ErrCode: "backend_error",
			Err:     fmt.Errorf("Backend error: %d", result.StatusCode),
		})
		return
	}

	if result.ContentType != "" {
		w.Header().Set("Content-Type", result.ContentType)
	}
	w.WriteHeader(result.StatusCode)
	if _, writeErr := w.Write(result.Body); writeErr != nil {
		// Client went away mid-response; nothing to recover.
		return
	}
}

// writeTransportFailure maps transport faults to a generic 500 so internal
// topology never leaks. Client disconnects are logged at debug only.
func (p *ProxyHandlers) writeTransportFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		p.logger().DebugContext(r.Context(), "proxy request canceled", "path", r.URL.Path)
		return
	}

	p.logger().ErrorContext(r.Context(), "upstream request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)

	errCode := "upstream_unavailable"
	if !apperrors.IsUpstreamUnavailable(err) {
		errCode = "internal"
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusInternalServerError,
		ErrCode: errCode,
		Err:     errors.New("backend request failed"),
	})
}
