//go:generate mockgen -source=contracts.go -destination=transition_mocks_test.go -package=transition

package transition

import (
	"context"

	"shipment-console/internal/domain"
)

type shipmentBackend interface {
	FetchShipment(ctx context.Context, id string) (domain.Shipment, error)
	PersistStatusTransition(ctx context.Context, id string, status domain.ShipmentStatus) error
	PersistAssignment(ctx context.Context, id, agentID string) error
}

type bulkPersister interface {
	PersistBulkStatusTransition(ctx context.Context, ids []string, status domain.ShipmentStatus) error
}

type eventPublisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

type agentChecker interface {
	IsDeactivated(ctx context.Context, kind domain.EntityKind, id string) (bool, error)
}
