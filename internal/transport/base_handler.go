package transport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	errors "github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/frahmantamala/expense-tracker-client/pkg/logger"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes err as an error envelope. Errors outside the AppError
// taxonomy are reported as internal errors without their message.
func (h *BaseHandler) WriteError(w http.ResponseWriter, err error) {
	appErr, ok := errors.IsAppError(err)
	if !ok {
		appErr = errors.NewInternalError("Internal server error", err)
	}
	status, body := appErr.ToHTTPResponse()
	if status == http.StatusBadGateway && appErr.Type == errors.ErrorTypeInternal {
		status = http.StatusInternalServerError
	}

	h.Logger.Error("http error", "status", status, "code", appErr.Code, "error", err)
	h.WriteJSON(w, status, body)
}

// WriteSVG writes an image produced by render.
func (h *BaseHandler) WriteSVG(w http.ResponseWriter, render func(w io.Writer) error) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if err := render(w); err != nil {
		h.Logger.Error("failed to render svg", "error", err)
	}
}
