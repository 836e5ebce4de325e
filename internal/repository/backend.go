package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"

	ports "shipment-console/internal/ports/backend"
)

// Backend serves every backend port from Postgres.
type Backend struct {
	*ShipmentRepo
	*DeactivationRepo
	*NotificationRepo
}

// NewBackend builds the Postgres backend over pool.
func NewBackend(pool *pgxpool.Pool) *Backend {
	return &Backend{
		ShipmentRepo:     NewShipmentRepo(pool),
		DeactivationRepo: NewDeactivationRepo(pool),
		NotificationRepo: NewNotificationRepo(pool),
	}
}

var (
	_ ports.Backend       = (*Backend)(nil)
	_ ports.BulkShipments = (*Backend)(nil)
)
