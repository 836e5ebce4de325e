package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shipment-console/internal/apperr"
	"shipment-console/internal/domain"
	"shipment-console/internal/logx"
	"shipment-console/internal/service/deactivation"
)

// DeactivationHandler serves account deactivation windows.
type DeactivationHandler struct {
	uc     deactivationUsecase
	logger logx.Logger
	now    func() time.Time
}

// NewDeactivationHandler wires a deactivation usecase into HTTP handlers.
func NewDeactivationHandler(uc deactivationUsecase, logger logx.Logger) *DeactivationHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &DeactivationHandler{uc: uc, logger: logger, now: time.Now}
}

// Get handles GET /deactivations/{kind}/{id}.
func (h *DeactivationHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseEntityKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	win, st, err := h.uc.EntityState(r.Context(), kind, chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toWindowDTO(win, st))
}

// Schedule handles PUT /deactivations/{kind}/{id}.
func (h *DeactivationHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseEntityKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	var req scheduleRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	if req.To == nil {
		writeAppError(h.logger, w, r, apperr.Validation("an end date must be chosen"))
		return
	}

	win, err := h.uc.ScheduleDeactivation(r.Context(), deactivation.ScheduleRequest{
		Kind:     kind,
		EntityID: chi.URLParam(r, "id"),
		From:     req.From,
		To:       *req.To,
	})
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toWindowDTO(win, h.uc.GetDeactivationState(win, h.now())))
}

// Clear handles DELETE /deactivations/{kind}/{id}.
func (h *DeactivationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseEntityKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	win, err := h.uc.ClearDeactivation(r.Context(), kind, chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toWindowDTO(win, domain.StateActive))
}
