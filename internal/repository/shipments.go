package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"shipment-console/internal/domain"
)

// ShipmentRepo reads and writes shipments.
type ShipmentRepo struct{ db *pgxpool.Pool }

// NewShipmentRepo creates a new ShipmentRepo.
func NewShipmentRepo(db *pgxpool.Pool) *ShipmentRepo { return &ShipmentRepo{db: db} }

// FetchShipment returns the shipment by id.
func (r *ShipmentRepo) FetchShipment(ctx context.Context, id string) (domain.Shipment, error) {
	var (
		s               domain.Shipment
		status          string
		price, delivery string
	)
	err := r.db.QueryRow(ctx, `
        SELECT id, order_number, status, seller_id, COALESCE(agent_id, ''),
               price::text, delivery_cost::text, created_at
        FROM shipments
        WHERE id = $1
    `, id).Scan(&s.ID, &s.OrderNumber, &status, &s.SellerID, &s.AgentID, &price, &delivery, &s.CreatedAt)
	if err != nil {
		if IsNotFound(err) {
			return domain.Shipment{}, notFound("shipment", id)
		}
		return domain.Shipment{}, fmt.Errorf("get shipment %s: %w", id, err)
	}

	if s.Status, err = domain.ParseShipmentStatus(status); err != nil {
		return domain.Shipment{}, fmt.Errorf("shipment %s has status %q: %w", id, status, err)
	}
	if s.Price, err = decimal.NewFromString(price); err != nil {
		return domain.Shipment{}, fmt.Errorf("shipment %s price: %w", id, err)
	}
	if s.DeliveryCost, err = decimal.NewFromString(delivery); err != nil {
		return domain.Shipment{}, fmt.Errorf("shipment %s delivery cost: %w", id, err)
	}
	return s, nil
}

// PersistStatusTransition writes the new status of one shipment.
func (r *ShipmentRepo) PersistStatusTransition(ctx context.Context, id string, status domain.ShipmentStatus) error {
	ct, err := r.db.Exec(ctx, `
        UPDATE shipments
        SET status = $2, updated_at = now()
        WHERE id = $1
    `, id, string(status))
	if err != nil {
		return fmt.Errorf("update shipment status %s: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return notFound("shipment", id)
	}
	return nil
}

// PersistBulkStatusTransition writes one status for every id in a single
// transaction. Nothing is written when any id is missing.
func (r *ShipmentRepo) PersistBulkStatusTransition(ctx context.Context, ids []string, status domain.ShipmentStatus) error {
	unique := dedupe(ids)
	return r.withTx(ctx, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `
            UPDATE shipments
            SET status = $1, updated_at = now()
            WHERE id = ANY($2)
        `, string(status), unique)
		if err != nil {
			return fmt.Errorf("bulk update shipment status: %w", err)
		}
		if got := ct.RowsAffected(); got != int64(len(unique)) {
			return notFound("shipments", fmt.Sprintf("(%d of %d)", int64(len(unique))-got, len(unique)))
		}
		return nil
	})
}

// PersistAssignment sets the agent of a shipment.
func (r *ShipmentRepo) PersistAssignment(ctx context.Context, id, agentID string) error {
	ct, err := r.db.Exec(ctx, `
        UPDATE shipments
        SET agent_id = $2, updated_at = now()
        WHERE id = $1
    `, id, agentID)
	if err != nil {
		return fmt.Errorf("assign shipment %s: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return notFound("shipment", id)
	}
	return nil
}

// withTx runs fn in a transaction and rolls back on error or panic.
func (r *ShipmentRepo) withTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
