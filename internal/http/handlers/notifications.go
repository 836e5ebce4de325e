package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shipment-console/internal/apperr"
	"shipment-console/internal/logx"
)

// NotificationHandler exposes the viewer's notification session.
type NotificationHandler struct {
	sessions sessionProvider
	logger   logx.Logger
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(sessions sessionProvider, logger logx.Logger) *NotificationHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &NotificationHandler{sessions: sessions, logger: logger}
}

// session returns the caller's session. A fresh session is loaded from the
// backend first; a failed load leaves it empty and is reported as a warning.
func (h *NotificationHandler) session(w http.ResponseWriter, r *http.Request) (session, string, bool) {
	v, ok := viewer(h.logger, w, r)
	if !ok {
		return nil, "", false
	}
	s, created := h.sessions.Session(v)
	if !created {
		return s, "", true
	}
	if err := s.Refresh(r.Context()); err != nil {
		return s, apperr.PublicMessage(err), true
	}
	return s, "", true
}

// Snapshot handles GET /notifications.
func (h *NotificationHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	s, warning, ok := h.session(w, r)
	if !ok {
		return
	}
	resp := toSnapshot(s.Snapshot())
	resp.Warning = warning
	writeJSON(h.logger, w, r, http.StatusOK, resp)
}

// Refresh handles POST /notifications/refresh. A failed refresh keeps the
// previous state and answers with the backend error.
func (h *NotificationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(h.logger, w, r)
	if !ok {
		return
	}
	s, _ := h.sessions.Session(v)
	if err := s.Refresh(r.Context()); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, toSnapshot(s.Snapshot()))
}

// MarkAsRead handles POST /notifications/{id}/read.
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, func(ctx context.Context, s session) error { return s.MarkAsRead(ctx, id) })
}

// MarkAllAsRead handles POST /notifications/read-all.
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, s session) error { return s.MarkAllAsRead(ctx) })
}

// ClearAll handles DELETE /notifications.
func (h *NotificationHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, s session) error { return s.ClearAll(ctx) })
}

// mutate applies a local change. Validation errors are rejected; backend
// failures are returned as a warning next to the updated snapshot.
func (h *NotificationHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(context.Context, session) error) {
	s, warning, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := fn(r.Context(), s); err != nil {
		if apperr.KindOf(err) != apperr.ErrTransport {
			writeAppError(h.logger, w, r, err)
			return
		}
		warning = apperr.PublicMessage(err)
	}
	resp := toSnapshot(s.Snapshot())
	resp.Warning = warning
	writeJSON(h.logger, w, r, http.StatusOK, resp)
}
