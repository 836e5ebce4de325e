package handlers

import (
	"context"
	"time"

	"shipment-console/internal/domain"
	"shipment-console/internal/service/deactivation"
	"shipment-console/internal/service/notification"
)

type shipmentUsecase interface {
	AllowedStatuses(ctx context.Context, actor domain.Viewer, shipmentID string) (domain.Shipment, []domain.ShipmentStatus, error)
	RequestStatusChange(ctx context.Context, actor domain.Viewer, shipmentID string, target domain.ShipmentStatus) (domain.Shipment, error)
	RequestBulkStatusChange(ctx context.Context, actor domain.Viewer, ids []string, target domain.ShipmentStatus) (domain.BulkResult, error)
	AssignAgent(ctx context.Context, actor domain.Viewer, shipmentID, agentID string) (domain.Shipment, error)
}

type deactivationUsecase interface {
	ScheduleDeactivation(ctx context.Context, req deactivation.ScheduleRequest) (domain.DeactivationWindow, error)
	ClearDeactivation(ctx context.Context, kind domain.EntityKind, entityID string) (domain.DeactivationWindow, error)
	EntityState(ctx context.Context, kind domain.EntityKind, entityID string) (domain.DeactivationWindow, domain.DeactivationState, error)
	GetDeactivationState(w domain.DeactivationWindow, now time.Time) domain.DeactivationState
}

// session is the per-viewer notification state the handlers drive.
type session interface {
	Snapshot() (domain.NotificationCounters, []domain.Notification)
	Refresh(ctx context.Context) error
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context) error
	ClearAll(ctx context.Context) error
}

type sessionProvider interface {
	Session(viewer domain.Viewer) (session, bool)
}

type eventPublisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// HubSessions adapts a notification.Hub to the handlers' session lookup.
type HubSessions struct{ Hub *notification.Hub }

// Session returns the viewer's reconciler.
func (h HubSessions) Session(viewer domain.Viewer) (session, bool) {
	return h.Hub.Session(viewer)
}
