package rest

import (
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/frahmantamala/expense-tracker-client/internal/aggregate"
	"github.com/frahmantamala/expense-tracker-client/internal/dashboard"
	"github.com/frahmantamala/expense-tracker-client/internal/transport"
	"github.com/frahmantamala/expense-tracker-client/pkg/logger"
)

type PreviewHandler struct {
	*transport.BaseHandler
	board *dashboard.Dashboard
}

func NewPreviewHandler(base *transport.BaseHandler, board *dashboard.Dashboard) *PreviewHandler {
	return &PreviewHandler{BaseHandler: base, board: board}
}

type SnapshotResponse struct {
	dashboard.Snapshot
	Label    string   `json:"label"`
	Warnings []string `json:"warnings,omitempty"`
}

type MonthResponse struct {
	Month aggregate.MonthSelector `json:"month"`
	Label string                  `json:"label"`
}

// GetSnapshot returns the aggregates and chart geometry for ?month=YYYY-MM,
// or the selected month when absent. ?refresh=true reloads the lists first.
func (h *PreviewHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	month, err := h.monthParam(r)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		logger.From(r.Context()).Debug("reloading dashboard lists")
		h.board.Load(r.Context())
		if h.board.SessionExpired() {
			h.WriteError(w, errors.ErrSessionExpired)
			return
		}
	}

	resp := SnapshotResponse{
		Snapshot: h.board.SnapshotFor(month),
		Label:    month.String(),
	}
	if res := h.board.Expenses(); res.Failed() {
		resp.Warnings = append(resp.Warnings, "expenses unavailable: "+res.Err.Error())
	}
	if res := h.board.Salaries(); res.Failed() {
		resp.Warnings = append(resp.Warnings, "salaries unavailable: "+res.Err.Error())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *PreviewHandler) GetMonth(w http.ResponseWriter, r *http.Request) {
	h.writeMonth(w, h.board.Month())
}

func (h *PreviewHandler) NextMonth(w http.ResponseWriter, r *http.Request) {
	h.writeMonth(w, h.board.Step(1))
}

func (h *PreviewHandler) PreviousMonth(w http.ResponseWriter, r *http.Request) {
	h.writeMonth(w, h.board.Step(-1))
}

func (h *PreviewHandler) BarChart(w http.ResponseWriter, r *http.Request) {
	month, err := h.monthParam(r)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSVG(w, h.board.SnapshotFor(month).Bar.WriteSVG)
}

func (h *PreviewHandler) PieChart(w http.ResponseWriter, r *http.Request) {
	month, err := h.monthParam(r)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	h.WriteSVG(w, h.board.SnapshotFor(month).Pie.WriteSVG)
}

func (h *PreviewHandler) writeMonth(w http.ResponseWriter, sel aggregate.MonthSelector) {
	h.WriteJSON(w, http.StatusOK, MonthResponse{Month: sel, Label: sel.String()})
}

func (h *PreviewHandler) monthParam(r *http.Request) (aggregate.MonthSelector, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return h.board.Month(), nil
	}
	sel, err := aggregate.ParseMonth(raw)
	if err != nil {
		return aggregate.MonthSelector{}, errors.ErrInvalidInput.WithDetails(errors.ValidationErrors{
			Errors: []errors.ValidationError{{
				Field:   "month",
				Message: "month must look like 2024-01",
				Code:    string(errors.ErrCodeValidationFailed),
			}},
		})
	}
	return sel, nil
}
