package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	errors "github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/frahmantamala/expense-tracker-client/pkg/logger"
)

// SessionState is what the preview server needs from the session store.
type SessionState interface {
	Resync(ctx context.Context)
	Authenticated() bool
}

// RequireSession re-reads the persisted session on every request, so a
// logout from another terminal takes effect immediately, and rejects the
// request when no session is present.
func RequireSession(state SessionState) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state.Resync(r.Context())
			if !state.Authenticated() {
				logger.From(r.Context()).Debug("preview request without session", "path", r.URL.Path)
				status, body := errors.ErrUnauthenticated.ToHTTPResponse()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_ = json.NewEncoder(w).Encode(body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
