package notification

import (
	"context"

	"shipment-console/internal/domain"
)

type notificationBackend interface {
	FetchNotifications(ctx context.Context, viewer domain.Viewer) ([]domain.Notification, error)
	PersistNotification(ctx context.Context, viewer domain.Viewer, n domain.Notification) error
	PersistMarkAsRead(ctx context.Context, viewer domain.Viewer, id string) error
	PersistMarkAllAsRead(ctx context.Context, viewer domain.Viewer) error
	PersistClearAll(ctx context.Context, viewer domain.Viewer) error
	FetchNewOrdersCount(ctx context.Context) (int, error)
	FetchTodayOrdersCount(ctx context.Context, viewer domain.Viewer) (int, error)
}

type eventRelay interface {
	Publish(ctx context.Context, ev domain.Event) error
}
