// Package auth runs the login, registration and logout flows against the
// expense API and records the outcome in the session store.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	errors "github.com/frahmantamala/expense-tracker-client/internal"
	userDatamodel "github.com/frahmantamala/expense-tracker-client/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-tracker-client/internal/session"
	"golang.org/x/sync/singleflight"
)

const (
	PathToken    = "/api/auth/token"
	PathRegister = "/api/auth/register"
	PathMe       = "/api/users/me"
)

// Gateway sends the unauthenticated auth calls.
type Gateway interface {
	URL(path string) string
	NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error)
	Send(ctx context.Context, req *http.Request) (*http.Response, error)
}

type SessionStore interface {
	Set(ctx context.Context, token string, identity session.Identity) error
	Clear(ctx context.Context)
}

type Controller struct {
	gateway Gateway
	store   SessionStore
	logger  *slog.Logger

	inflight atomic.Int32
	logins   singleflight.Group
}

func NewController(gateway Gateway, store SessionStore, logger *slog.Logger) *Controller {
	return &Controller{
		gateway: gateway,
		store:   store,
		logger:  logger,
	}
}

// Loading reports whether a login or registration is in flight.
func (c *Controller) Loading() bool {
	return c.inflight.Load() > 0
}

func (c *Controller) begin() func() {
	c.inflight.Add(1)
	return func() { c.inflight.Add(-1) }
}

// Login exchanges credentials for a token, fetches the profile with it and
// stores both. A second call with the same credentials while one is pending
// waits for and shares the first call's result. Each caller stops waiting
// when its own ctx ends; the shared attempt is bounded by the API timeout.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	dto := LoginDTO{Username: username, Password: password}
	if err := dto.Validate(); err != nil {
		// the API would answer 422, which is a failed login too
		return errors.ErrLoginFailed.WithDetails(err.Details)
	}

	done := c.begin()
	defer done()

	attempt := context.WithoutCancel(ctx)
	ch := c.logins.DoChan(loginKey(dto), func() (interface{}, error) {
		return nil, c.login(attempt, dto)
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("login coalesced with a pending attempt", "username", username)
		}
		return res.Err
	case <-ctx.Done():
		return errors.NewNetworkFailure(ctx.Err())
	}
}

func loginKey(dto LoginDTO) string {
	sum := sha256.Sum256([]byte(dto.Username + "\x00" + dto.Password))
	return hex.EncodeToString(sum[:])
}

func (c *Controller) login(ctx context.Context, dto LoginDTO) error {
	token, err := c.exchangeToken(ctx, dto)
	if err != nil {
		return err
	}

	profile, err := c.fetchProfile(ctx, token)
	if err != nil {
		return err
	}

	identity := session.Identity{ID: profile.ID, Username: profile.Username, Email: profile.Email}
	if err := c.store.Set(ctx, token, identity); err != nil {
		c.logger.Error("failed to store session", "error", err, "username", dto.Username)
		return errors.NewInternalError("Failed to store session", err)
	}

	c.logger.Info("logged in", "user_id", identity.ID, "username", identity.Username)
	return nil
}

func (c *Controller) exchangeToken(ctx context.Context, dto LoginDTO) (string, error) {
	form := url.Values{}
	form.Set("username", dto.Username)
	form.Set("password", dto.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gateway.URL(PathToken), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.gateway.Send(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Warn("token exchange rejected", "status", resp.StatusCode, "username", dto.Username)
		return "", errors.ErrLoginFailed
	}

	var token userDatamodel.Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil || token.AccessToken == "" {
		c.logger.Warn("token response unusable", "error", err)
		return "", errors.ErrLoginFailed
	}
	return token.AccessToken, nil
}

func (c *Controller) fetchProfile(ctx context.Context, token string) (userDatamodel.User, error) {
	req, err := c.gateway.NewRequest(ctx, http.MethodGet, PathMe, nil)
	if err != nil {
		return userDatamodel.User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.gateway.Send(ctx, req)
	if err != nil {
		return userDatamodel.User{}, err
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Warn("profile fetch rejected", "status", resp.StatusCode)
		return userDatamodel.User{}, errors.ErrProfileFetchFailed
	}

	var profile userDatamodel.User
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return userDatamodel.User{}, errors.ErrProfileFetchFailed.WithCause(err)
	}
	if profile.ID <= 0 || profile.Username == "" {
		return userDatamodel.User{}, errors.ErrProfileFetchFailed
	}
	return profile, nil
}

// Register creates the account and then logs in with the same credentials.
// Errors from that login are returned with their own kind.
func (c *Controller) Register(ctx context.Context, username, email, password string) error {
	dto := RegisterDTO{Username: username, Email: email, Password: password}
	if err := dto.Validate(); err != nil {
		return err
	}

	done := c.begin()
	defer done()

	req, err := c.gateway.NewRequest(ctx, http.MethodPost, PathRegister, dto)
	if err != nil {
		return err
	}

	resp, err := c.gateway.Send(ctx, req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return errors.ErrDuplicateAccount
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return errors.ErrInvalidInput
	case !success(resp.StatusCode):
		c.logger.Warn("registration failed", "status", resp.StatusCode, "username", username)
		return errors.NewRegistrationFailed(resp.StatusCode)
	}

	c.logger.Info("account registered", "username", username)
	return c.Login(ctx, username, password)
}

// Logout clears the session. It does not call the API.
func (c *Controller) Logout(ctx context.Context) {
	c.store.Clear(ctx)
}

func success(status int) bool {
	return status >= 200 && status <= 299
}
