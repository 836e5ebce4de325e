package backend

import (
	"context"

	"shipment-console/internal/domain"
)

// Shipments covers single-shipment reads and writes.
type Shipments interface {
	FetchShipment(ctx context.Context, id string) (domain.Shipment, error)
	PersistStatusTransition(ctx context.Context, id string, status domain.ShipmentStatus) error
	PersistAssignment(ctx context.Context, id, agentID string) error
}

// BulkShipments is the optional batch endpoint.
type BulkShipments interface {
	PersistBulkStatusTransition(ctx context.Context, ids []string, status domain.ShipmentStatus) error
}

// Deactivations covers deactivation window records.
type Deactivations interface {
	FetchDeactivationWindow(ctx context.Context, kind domain.EntityKind, id string) (domain.DeactivationWindow, error)
	PersistDeactivationWindow(ctx context.Context, w domain.DeactivationWindow) error
}

// Notifications covers per-viewer notification state and the counters.
type Notifications interface {
	FetchNotifications(ctx context.Context, viewer domain.Viewer) ([]domain.Notification, error)
	PersistNotification(ctx context.Context, viewer domain.Viewer, n domain.Notification) error
	PersistMarkAsRead(ctx context.Context, viewer domain.Viewer, id string) error
	PersistMarkAllAsRead(ctx context.Context, viewer domain.Viewer) error
	PersistClearAll(ctx context.Context, viewer domain.Viewer) error
	FetchNewOrdersCount(ctx context.Context) (int, error)
	FetchTodayOrdersCount(ctx context.Context, viewer domain.Viewer) (int, error)
}

// Backend is the full system-of-record surface. Both the REST client and the
// Postgres repository implement it.
type Backend interface {
	Shipments
	BulkShipments
	Deactivations
	Notifications
}
