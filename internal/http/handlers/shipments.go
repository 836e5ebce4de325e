package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"shipment-console/internal/domain"
	"shipment-console/internal/logx"
)

// ShipmentHandler serves status transitions and agent assignment.
type ShipmentHandler struct {
	uc     shipmentUsecase
	logger logx.Logger
}

// NewShipmentHandler wires a shipment usecase into HTTP handlers.
func NewShipmentHandler(uc shipmentUsecase, logger logx.Logger) *ShipmentHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &ShipmentHandler{uc: uc, logger: logger}
}

// AllowedStatuses handles GET /shipments/{id}/allowed-statuses.
func (h *ShipmentHandler) AllowedStatuses(w http.ResponseWriter, r *http.Request) {
	actor, ok := viewer(h.logger, w, r)
	if !ok {
		return
	}
	sh, allowed, err := h.uc.AllowedStatuses(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, allowedStatusesResponse{
		ShipmentID:    sh.ID,
		CurrentStatus: sh.Status,
		Allowed:       allowed,
	})
}

// ChangeStatus handles POST /shipments/{id}/status.
func (h *ShipmentHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := viewer(h.logger, w, r)
	if !ok {
		return
	}
	var req statusChangeRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	// The usecase validates the target after the role check.
	target := domain.ShipmentStatus(strings.TrimSpace(req.Status))

	sh, err := h.uc.RequestStatusChange(r.Context(), actor, chi.URLParam(r, "id"), target)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toShipmentDTO(sh))
}

// BulkChangeStatus handles POST /shipments/status/bulk. Per-item failures are
// reported in the body with status 200.
func (h *ShipmentHandler) BulkChangeStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := viewer(h.logger, w, r)
	if !ok {
		return
	}
	var req bulkStatusRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	target := domain.ShipmentStatus(strings.TrimSpace(req.Status))

	res, err := h.uc.RequestBulkStatusChange(r.Context(), actor, req.IDs, target)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toBulkResultDTO(res))
}

// Assign handles POST /shipments/{id}/assign.
func (h *ShipmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, ok := viewer(h.logger, w, r)
	if !ok {
		return
	}
	var req assignRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	sh, err := h.uc.AssignAgent(r.Context(), actor, chi.URLParam(r, "id"), req.AgentID)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toShipmentDTO(sh))
}
