package gateway

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

const (
	requestIDHeader   = "X-Request-ID"
	maxLoggedBodySize = 64 << 10
)

// TokenSource yields the current bearer credential, if any.
type TokenSource interface {
	GetToken(ctx context.Context) (string, bool)
}

// Transport is the request/response interceptor shared by every resource
// client.
type Transport struct {
	Base   http.RoundTripper
	Tokens TokenSource
	Logger *slog.Logger
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	if t.Tokens != nil && out.Header.Get("Authorization") == "" {
		if token, ok := t.Tokens.GetToken(req.Context()); ok {
			out.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if out.Header.Get(requestIDHeader) == "" {
		out.Header.Set(requestIDHeader, uuid.NewString())
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusForbidden {
		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(body))

		logged := body
		if len(logged) > maxLoggedBodySize {
			logged = logged[:maxLoggedBodySize]
		}
		attrs := []any{
			"method", out.Method,
			"url", out.URL.String(),
			"status", resp.StatusCode,
			"request_id", out.Header.Get(requestIDHeader),
			"body", string(logged),
		}
		if len(body) > maxLoggedBodySize {
			attrs = append(attrs, "body_truncated", true)
		}
		if readErr != nil {
			attrs = append(attrs, "read_error", readErr.Error())
		}
		t.logger().Warn("backend refused request", attrs...)
	}

	return resp, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}
