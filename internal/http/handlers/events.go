package handlers

import (
	"net/http"
	"strings"

	"shipment-console/internal/apperr"
	"shipment-console/internal/domain"
	mw "shipment-console/internal/http/middleware"
	"shipment-console/internal/logx"
)

// EventHandler accepts domain events pushed by the backend or by sellers
// creating orders and fans them out.
type EventHandler struct {
	pub    eventPublisher
	logger logx.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(pub eventPublisher, logger logx.Logger) *EventHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &EventHandler{pub: pub, logger: logger}
}

// Publish handles POST /events. Sellers may only announce their own new
// orders. A relay failure after local delivery is reported as a warning with 202.
func (h *EventHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	ev, err := req.toDomain()
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	if v, ok := mw.ViewerFrom(r.Context()); ok {
		if ev, err = scopeToViewer(ev, v); err != nil {
			writeAppError(h.logger, w, r, err)
			return
		}
	}

	if err := h.pub.Publish(r.Context(), ev); err != nil {
		if apperr.KindOf(err) != apperr.ErrTransport {
			writeAppError(h.logger, w, r, err)
			return
		}
		writeJSON(h.logger, w, r, http.StatusAccepted, warningResponse{Status: "delivered", Warning: apperr.PublicMessage(err)})
		return
	}
	writeJSON(h.logger, w, r, http.StatusAccepted, warningResponse{Status: "delivered"})
}

func (req eventRequest) toDomain() (domain.Event, error) {
	typ := domain.NotificationType(strings.TrimSpace(req.Type))
	if !typ.Valid() {
		return domain.Event{}, apperr.Validation("unknown event type " + req.Type)
	}
	ev := domain.Event{
		ID:              strings.TrimSpace(req.ID),
		Type:            typ,
		OrderID:         strings.TrimSpace(req.OrderID),
		OrderNumber:     strings.TrimSpace(req.OrderNumber),
		SellerID:        strings.TrimSpace(req.SellerID),
		AssignedAgentID: strings.TrimSpace(req.AssignedAgentID),
	}
	if ev.OrderID == "" {
		return domain.Event{}, apperr.Validation("order_id is required")
	}
	for _, p := range []struct {
		raw string
		dst *domain.ShipmentStatus
	}{{req.OldStatus, &ev.OldStatus}, {req.NewStatus, &ev.NewStatus}} {
		if strings.TrimSpace(p.raw) == "" {
			continue
		}
		st, err := domain.ParseShipmentStatus(p.raw)
		if err != nil {
			return domain.Event{}, err
		}
		*p.dst = st
	}
	if typ == domain.NotificationStatusChanged && ev.NewStatus == "" {
		return domain.Event{}, apperr.Validation("new_status is required for status_changed")
	}
	if req.OccurredAt != nil {
		ev.OccurredAt = req.OccurredAt.UTC()
	}
	return ev, nil
}

func scopeToViewer(ev domain.Event, v domain.Viewer) (domain.Event, error) {
	ev.ActorRole = v.Role
	if v.Role != domain.RoleSeller {
		return ev, nil
	}
	if ev.Type != domain.NotificationOrderCreated {
		return domain.Event{}, apperr.Permission("sellers may only announce created orders")
	}
	if ev.SellerID != "" && ev.SellerID != v.ID {
		return domain.Event{}, apperr.Permission("order belongs to another seller")
	}
	ev.SellerID = v.ID
	return ev, nil
}
