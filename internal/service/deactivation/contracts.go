package deactivation

import (
	"context"

	"shipment-console/internal/domain"
)

type windowStore interface {
	FetchDeactivationWindow(ctx context.Context, kind domain.EntityKind, id string) (domain.DeactivationWindow, error)
	PersistDeactivationWindow(ctx context.Context, w domain.DeactivationWindow) error
}
