package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"shipment-console/internal/domain"
)

const notificationFetchLimit = 500

// NotificationRepo stores notifications per viewer and counts orders for the badges.
type NotificationRepo struct{ db *pgxpool.Pool }

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(db *pgxpool.Pool) *NotificationRepo { return &NotificationRepo{db: db} }

// FetchNotifications returns the viewer's notifications, newest first.
func (r *NotificationRepo) FetchNotifications(ctx context.Context, viewer domain.Viewer) ([]domain.Notification, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, type, title, message, read, created_at, order_id, order_number, old_status, new_status
        FROM notifications
        WHERE viewer_key = $1
        ORDER BY created_at DESC, id
        LIMIT $2
    `, viewer.Key(), notificationFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications %s: %w", viewer.Key(), err)
	}
	defer rows.Close()

	out := make([]domain.Notification, 0)
	for rows.Next() {
		var (
			n                        domain.Notification
			typ, oldStatus, newStatus string
		)
		if err := rows.Scan(&n.ID, &typ, &n.Title, &n.Message, &n.Read, &n.Timestamp,
			&n.OrderID, &n.OrderNumber, &oldStatus, &newStatus); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = domain.NotificationType(typ)
		n.OldStatus = domain.ShipmentStatus(oldStatus)
		n.NewStatus = domain.ShipmentStatus(newStatus)
		out = append(out, n)
	}
	return out, rows.Err()
}

// PersistNotification stores n for the viewer. Storing the same id twice is a no-op.
func (r *NotificationRepo) PersistNotification(ctx context.Context, viewer domain.Viewer, n domain.Notification) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO notifications
            (viewer_key, id, type, title, message, read, created_at, order_id, order_number, old_status, new_status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, viewer.Key(), n.ID, string(n.Type), n.Title, n.Message, n.Read, n.Timestamp,
		n.OrderID, n.OrderNumber, string(n.OldStatus), string(n.NewStatus))
	if err != nil {
		if IsDuplicate(err) {
			return nil
		}
		return fmt.Errorf("insert notification %s: %w", n.ID, err)
	}
	return nil
}

// PersistMarkAsRead marks one notification as read.
func (r *NotificationRepo) PersistMarkAsRead(ctx context.Context, viewer domain.Viewer, id string) error {
	ct, err := r.db.Exec(ctx, `
        UPDATE notifications SET read = true
        WHERE viewer_key = $1 AND id = $2
    `, viewer.Key(), id)
	if err != nil {
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return notFound("notification", id)
	}
	return nil
}

// PersistMarkAllAsRead marks every notification of the viewer as read.
func (r *NotificationRepo) PersistMarkAllAsRead(ctx context.Context, viewer domain.Viewer) error {
	if _, err := r.db.Exec(ctx, `
        UPDATE notifications SET read = true
        WHERE viewer_key = $1 AND NOT read
    `, viewer.Key()); err != nil {
		return fmt.Errorf("mark all notifications read %s: %w", viewer.Key(), err)
	}
	return nil
}

// PersistClearAll deletes the viewer's notifications.
func (r *NotificationRepo) PersistClearAll(ctx context.Context, viewer domain.Viewer) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE viewer_key = $1`, viewer.Key()); err != nil {
		return fmt.Errorf("clear notifications %s: %w", viewer.Key(), err)
	}
	return nil
}

// FetchNewOrdersCount counts shipments still in status new.
func (r *NotificationRepo) FetchNewOrdersCount(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM shipments WHERE status = $1`, string(domain.StatusNew),
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count new orders: %w", err)
	}
	return n, nil
}

// FetchTodayOrdersCount counts shipments created since midnight that the viewer can see:
// sellers their own, agents their assigned, admins all.
func (r *NotificationRepo) FetchTodayOrdersCount(ctx context.Context, viewer domain.Viewer) (int, error) {
	q := `SELECT count(*) FROM shipments WHERE created_at >= date_trunc('day', now())`
	args := make([]any, 0, 1)
	switch viewer.Role {
	case domain.RoleSeller:
		q += ` AND seller_id = $1`
		args = append(args, viewer.ID)
	case domain.RoleAgent:
		q += ` AND agent_id = $1`
		args = append(args, viewer.ID)
	}

	var n int
	if err := r.db.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count today orders %s: %w", viewer.Key(), err)
	}
	return n, nil
}
