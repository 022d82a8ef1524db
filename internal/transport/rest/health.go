package rest

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/frahmantamala/expense-tracker-client/internal/gateway"
	"github.com/frahmantamala/expense-tracker-client/internal/transport"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
	HealthSkipped   HealthStatus = "skipped"
)

// PathAPIHealth is the expense API's own health endpoint.
const PathAPIHealth = "/health"

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
	DurationMs int64        `json:"duration_ms"`
}

// APIProbe issues an unauthenticated call to the expense API.
type APIProbe interface {
	DoPublic(ctx context.Context, method, path string, body any) (*http.Response, error)
}

type HealthHandler struct {
	*transport.BaseHandler
	db  *sql.DB
	api APIProbe
}

// NewHealthHandler checks the session database and the expense API. A nil
// db (in-memory session store) is reported as skipped.
func NewHealthHandler(base *transport.BaseHandler, db *sql.DB, api APIProbe) *HealthHandler {
	return &HealthHandler{BaseHandler: base, db: db, api: api}
}

func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := map[string]CheckEntry{
		"session_store": h.check(ctx, h.db != nil, func(ctx context.Context) error {
			return h.db.PingContext(ctx)
		}),
		"expense_api": h.check(ctx, h.api != nil, func(ctx context.Context) error {
			resp, err := h.api.DoPublic(ctx, http.MethodGet, PathAPIHealth, nil)
			if err != nil {
				return err
			}
			return gateway.Decode(resp, nil)
		}),
	}

	resp := HealthResponse{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		Components: components,
	}
	for _, entry := range components {
		if entry.Status == HealthUnhealthy {
			resp.Status = HealthUnhealthy
		}
	}

	statusCode := http.StatusOK
	if resp.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	h.WriteJSON(w, statusCode, resp)
}

func (h *HealthHandler) check(ctx context.Context, enabled bool, probe func(context.Context) error) CheckEntry {
	if !enabled {
		return CheckEntry{Status: HealthSkipped, CheckedAt: time.Now()}
	}

	start := time.Now()
	err := probe(ctx)
	entry := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	return entry
}
