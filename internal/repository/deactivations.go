package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"shipment-console/internal/domain"
)

// DeactivationRepo stores deactivation windows, one row per account.
type DeactivationRepo struct{ db *pgxpool.Pool }

// NewDeactivationRepo creates a new DeactivationRepo.
func NewDeactivationRepo(db *pgxpool.Pool) *DeactivationRepo { return &DeactivationRepo{db: db} }

// FetchDeactivationWindow returns the stored window; an account without a row is NotFound.
func (r *DeactivationRepo) FetchDeactivationWindow(ctx context.Context, kind domain.EntityKind, id string) (domain.DeactivationWindow, error) {
	var from, to *time.Time
	err := r.db.QueryRow(ctx, `
        SELECT from_at, to_at
        FROM deactivations
        WHERE entity_kind = $1 AND entity_id = $2
    `, string(kind), id).Scan(&from, &to)
	if err != nil {
		if IsNotFound(err) {
			return domain.DeactivationWindow{}, notFound(string(kind), id)
		}
		return domain.DeactivationWindow{}, fmt.Errorf("get deactivation %s/%s: %w", kind, id, err)
	}
	return domain.DeactivationWindow{EntityKind: kind, EntityID: id, Bounds: domain.NewBounds(from, to)}, nil
}

// PersistDeactivationWindow upserts the window. Unset bounds are stored as two NULLs.
func (r *DeactivationRepo) PersistDeactivationWindow(ctx context.Context, w domain.DeactivationWindow) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO deactivations (entity_kind, entity_id, from_at, to_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (entity_kind, entity_id) DO UPDATE
        SET from_at = EXCLUDED.from_at, to_at = EXCLUDED.to_at, updated_at = now()
    `, string(w.EntityKind), w.EntityID, w.Bounds.FromPtr(), w.Bounds.ToPtr())
	if err != nil {
		return fmt.Errorf("upsert deactivation %s/%s: %w", w.EntityKind, w.EntityID, err)
	}
	return nil
}
