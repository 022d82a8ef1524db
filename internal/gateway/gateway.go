// Package gateway sends calls to the expense API, attaching the bearer
// credential held by the session store.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	errors "github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/google/uuid"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
)

// SessionStore is the part of the session store the gateway relies on.
// The gateway never sets a session, it only reads and expires one.
type SessionStore interface {
	Token() string
	Expire(ctx context.Context)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Gateway struct {
	baseURL *url.URL
	client  *http.Client
	store   SessionStore
	logger  *slog.Logger
}

type Option func(*Gateway)

// WithHTTPClient replaces the default client, e.g. with an httptest one.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

func New(cfg Config, store SessionStore, logger *slog.Logger, opts ...Option) (*Gateway, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	g := &Gateway{
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
		store:   store,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// URL resolves an API path such as "/api/expenses/?limit=10" against the
// base URL.
func (g *Gateway) URL(path string) string {
	u := *g.baseURL
	ref, err := url.Parse(path)
	if err != nil {
		u.Path = g.baseURL.Path + path
		return u.String()
	}
	u.Path = g.baseURL.Path + ref.Path
	u.RawQuery = ref.RawQuery
	return u.String()
}

// NewRequest builds a request for path. A non-nil body is sent as JSON.
func (g *Gateway) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.URL(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Call sends req with the current credential.
//
// Without a credential it fails with ErrUnauthenticated and sends nothing.
// A 401 expires the session before returning ErrSessionExpired. Any other
// response is returned as is for the caller to interpret.
func (g *Gateway) Call(ctx context.Context, req *http.Request) (*http.Response, error) {
	token := g.store.Token()
	if token == "" {
		return nil, errors.ErrUnauthenticated
	}

	out := req.Clone(ctx)
	out.Header.Set(HeaderAuthorization, "Bearer "+token)

	resp, err := g.send(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		g.logger.Warn("credential rejected, expiring session",
			"method", out.Method,
			"path", out.URL.Path)
		g.store.Expire(ctx)
		return nil, errors.ErrSessionExpired
	}

	return resp, nil
}

// Do builds and sends an authenticated request.
func (g *Gateway) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	req, err := g.NewRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return g.Call(ctx, req)
}

// Send issues req without a credential, for the public endpoints.
func (g *Gateway) Send(ctx context.Context, req *http.Request) (*http.Response, error) {
	return g.send(req.Clone(ctx))
}

// DoPublic builds and sends an unauthenticated request.
func (g *Gateway) DoPublic(ctx context.Context, method, path string, body any) (*http.Response, error) {
	req, err := g.NewRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return g.send(req)
}

func (g *Gateway) send(req *http.Request) (*http.Response, error) {
	if req.Header.Get(HeaderRequestID) == "" {
		id := errors.RequestIDFromContext(req.Context())
		if id == "" {
			id = uuid.NewString()
		}
		req.Header.Set(HeaderRequestID, id)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("api request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"request_id", req.Header.Get(HeaderRequestID),
			"error", err)
		return nil, errors.NewNetworkFailure(err)
	}

	g.logger.Debug("api request",
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", req.Header.Get(HeaderRequestID),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	return resp, nil
}

// Decode reads a 2xx JSON body into v and closes it. Other statuses yield an
// UnexpectedResponse error carrying the status.
func Decode(resp *http.Response, v any) error {
	defer resp.Body.Close()

	method, path := "", ""
	if resp.Request != nil {
		method, path = resp.Request.Method, resp.Request.URL.Path
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return errors.NewUnexpectedResponse(method, path, resp.StatusCode)
	}
	if v == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
